package toml_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/diagnostic"
	"tagged-serde/format/toml"
	"tagged-serde/options"
)

type Person struct {
	Name       string    `toml:"name"`
	Age        int       `toml:"age"`
	Address    *string   `toml:"address"`
	Department string    `toml:"department,skipmissing"`
	Salary     int       `toml:"salary,omitempty"`
	CreatedAt  time.Time `toml:"createdAt"`
	Dummy      int
}

const tomlFull = `
name = "Sucipto"
age = 24
address = "Jakarta"
department = "Engineering"
salary = 1000
createdAt = 2024-01-02T03:04:05Z
`

const tomlMissingDepartment = `
name = "Sucipto"
age = 24
address = "Jakarta"
salary = 1000
createdAt = 2024-01-02T03:04:05Z
`

func ExampleDump() {
	type server struct {
		Host string   `toml:"host"`
		Port int      `toml:"port"`
		Tags []string `toml:"tags,omitempty"`
	}

	out, err := toml.Dump(server{Host: "localhost", Port: 8080, Tags: []string{"a", "b"}})
	if err != nil {
		panic(err)
	}

	fmt.Println(string(out))

	// Output:
	// host = "localhost"
	// port = 8080
	// tags = ["a", "b"]
}

func TestParseFull(t *testing.T) {
	p, err := toml.Parse[Person]([]byte(tomlFull))
	require.NoError(t, err)

	assert.Equal(t, "Sucipto", p.Name)
	assert.Equal(t, 24, p.Age)
	require.NotNil(t, p.Address)
	assert.Equal(t, "Jakarta", *p.Address)
	assert.Equal(t, "Engineering", p.Department)
	assert.Equal(t, 1000, p.Salary)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), p.CreatedAt)
}

func TestParseMissingDepartment(t *testing.T) {
	p := Person{Department: "unset"}
	require.NoError(t, toml.ParseInto([]byte(tomlMissingDepartment), &p))

	require.NotNil(t, p.Address)
	assert.Equal(t, "Jakarta", *p.Address)
	assert.Equal(t, "unset", p.Department)
}

func TestTimestampText(t *testing.T) {
	type event struct {
		At time.Time `toml:"at"`
	}

	e, err := toml.Parse[event]([]byte(`at = "2024-01-02T03:04:05Z"`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), e.At)

	e, err = toml.Parse[event]([]byte(`at = 2024-01-02T10:04:05.75+07:00`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), e.At)

	_, err = toml.Parse[event]([]byte(`at = "yesterday"`))
	assert.EqualError(t, err, "error at .at: invalid datetime format: yesterday")
}

func TestDumpWithoutNull(t *testing.T) {
	p := Person{Name: "Sucipto", Age: 24, Department: "unset"}

	out, err := toml.Dump(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "salary")

	// omitted without skipmissing: reading it back needs the member
	_, err = toml.Parse[Person](out)
	require.ErrorIs(t, err, diagnostic.ErrMissingField)
	assert.EqualError(t, err, "error at .salary: missing field")

	p.Salary = 1000

	out, err = toml.Dump(p)
	require.NoError(t, err)

	back, err := toml.Parse[Person](out)
	require.NoError(t, err)

	// absent optionals come back as their zero value
	require.NotNil(t, back.Address)
	assert.Empty(t, *back.Address)
	assert.Equal(t, "unset", back.Department)
	assert.Equal(t, 1000, back.Salary)
}

func TestTables(t *testing.T) {
	type owner struct {
		Name string `toml:"name"`
	}

	type product struct {
		SKU   string  `toml:"sku"`
		Price float64 `toml:"price"`
	}

	type inventory struct {
		Owner    owner          `toml:"owner"`
		Products []product      `toml:"products"`
		Stock    map[string]int `toml:"stock"`
	}

	doc := `
[owner]
name = "Marwoto"

[stock]
apple = 3
pear = 0

[[products]]
sku = "A-1"
price = 1.5

[[products]]
sku = "B-2"
price = 20.0
`

	inv, err := toml.Parse[inventory]([]byte(doc))
	require.NoError(t, err)

	want := inventory{
		Owner:    owner{Name: "Marwoto"},
		Products: []product{{"A-1", 1.5}, {"B-2", 20}},
		Stock:    map[string]int{"apple": 3, "pear": 0},
	}
	assert.Equal(t, want, inv)

	out, err := toml.Dump(inv, options.Options{Indent: 2})
	require.NoError(t, err)

	back, err := toml.Parse[inventory](out)
	require.NoError(t, err)
	assert.Equal(t, want, back)
}

func TestDocumentOrder(t *testing.T) {
	n, err := toml.Read([]byte("zeta = 1\nalpha = 2\n[mid]\ny = 1\nx = 2\n"), options.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, n.Keys())

	mid, _ := n.Get("mid")
	assert.Equal(t, []string{"y", "x"}, mid.Keys())
}

func TestTopLevelMustBeTable(t *testing.T) {
	_, err := toml.Dump([]int{1, 2})
	require.ErrorIs(t, err, diagnostic.ErrTypeMismatch)

	_, err = toml.Parse[Person]([]byte(`name = `))
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)
}
