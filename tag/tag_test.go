package tag_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"tagged-serde/tag"
)

func Example() {
	raw := "json:`name,omitempty` toml:`full_name,skipmissing` opt:`n,name,help=your name`"

	fmt.Printf("%+v\n", tag.Parse(raw, "json"))
	fmt.Printf("%+v\n", tag.Parse(raw, "toml"))
	fmt.Printf("%+v\n", tag.Parse(raw, "proto"))
	fmt.Printf("%+v\n", tag.ParseOpt(raw))
	// Output:
	// {Key:name SkipMissing:false OmitEmpty:true NoSerde:false Positional:false Help:}
	// {Key:full_name SkipMissing:true OmitEmpty:false NoSerde:false Positional:false Help:}
	// {Key: SkipMissing:false OmitEmpty:false NoSerde:false Positional:false Help:}
	// {Short:110 Long:name Positional:false SkipMissing:false Help:your name}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		raw, ns string
		want    string
		ok      bool
	}{
		{`json:"name"`, "json", "name", true},
		{"json:`name`", "json", "name", true},
		{`json:"a" toml:"b"`, "toml", "b", true},
		{"json,yaml:`shared` proto:`1`", "yaml", "shared", true},
		{"json,yaml:`shared` proto:`1`", "proto", "1", true},
		{`json:"with \"quote\""`, "json", `with "quote"`, true},
		{`json:""`, "json", "", true},
		{`json:"name"`, "toml", "", false},
		{`json:"unterminated`, "json", "", false},
		{`jsonx:"a" json:"b"`, "json", "b", true},
		{``, "json", "", false},
	}

	for _, c := range cases {
		got, ok := tag.Lookup(c.raw, c.ns)
		assert.Equal(t, c.ok, ok, c.raw)
		assert.Equal(t, c.want, got, c.raw)
	}
}

func TestParseSegment(t *testing.T) {
	info := tag.ParseSegment("id,skipmissing,omitempty,noserde,positional,help=the id,unknown,x=y")
	assert.Equal(t, tag.Info{
		Key:         "id",
		SkipMissing: true,
		OmitEmpty:   true,
		NoSerde:     true,
		Positional:  true,
		Help:        "the id",
	}, info)

	assert.True(t, tag.ParseSegment("-").Inert())
	assert.Equal(t, "-", tag.ParseSegment("-,").Key)
	assert.True(t, tag.ParseSegment(",omitempty").Inert())
	assert.True(t, tag.ParseSegment(",omitempty").OmitEmpty)
}

func TestParseIsDeterministic(t *testing.T) {
	raw := `json:"a,omitempty"`
	assert.Equal(t, tag.Parse(raw, "json"), tag.Parse(raw, "json"))
}

func TestFieldNumber(t *testing.T) {
	for key, want := range map[string]int64{
		"1":      1,
		"15":     15,
		"3abc":   3,
		"-2":     -2,
		"name":   0,
		"":       0,
		"-":      0,
		"999999": 999999,
	} {
		assert.Equal(t, want, tag.FieldNumber(tag.Info{Key: key}), key)
	}
}

func TestTupleInfoIsObj(t *testing.T) {
	keyed := tag.TupleInfo{Slots: []tag.Info{{Key: "a"}, {Key: "b"}}}
	positional := tag.TupleInfo{Slots: []tag.Info{{Key: "a", Positional: true}, {}}}
	untagged := tag.TupleInfo{Slots: []tag.Info{{}, {}}}
	mixed := tag.TupleInfo{Slots: []tag.Info{{Key: "a", Positional: true}, {Key: "b"}}}

	assert.True(t, keyed.IsObj())
	assert.False(t, positional.IsObj())
	assert.False(t, untagged.IsObj())
	assert.True(t, mixed.IsObj())
	assert.True(t, tag.TupleInfo{}.IsObj())
}

func TestParseOpt(t *testing.T) {
	assert.Equal(t, tag.OptInfo{Short: 'v', Long: "verbose", Help: "more output"},
		tag.ParseOpt(`opt:"v,verbose,help=more output"`))
	assert.Equal(t, tag.OptInfo{Long: "input", Positional: true, SkipMissing: true},
		tag.ParseOpt(`opt:"input,positional,skipmissing"`))
	assert.True(t, tag.ParseOpt(`json:"x"`).Inert())
}

func TestTagAndTuple(t *testing.T) {
	name := tag.New("json:`name`", "Sucipto")
	age := tag.New("json:`age,omitempty`", 24)
	var free float64

	tup := tag.Tuple{name, age, &free}
	assert.Equal(t, []string{"json:`name`", "json:`age,omitempty`", ""}, tup.Raws())
	assert.True(t, tup.Info("json").IsObj())
	assert.Equal(t, "name", name.Info("json").Key)

	name.Set("Budi")
	assert.Equal(t, "Budi", name.Get())
	assert.Equal(t, "Budi", *name.Addr().(*string))
}
