package jsonv2_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagged-serde/diagnostic"
	"tagged-serde/format/json"
	"tagged-serde/format/jsonv2"
	"tagged-serde/options"
)

type Person struct {
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Address    *string   `json:"address"`
	Department string    `json:"department,skipmissing"`
	Salary     int       `json:"salary,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const full = `{"name":"Sucipto","age":24,"address":"Jakarta","department":"Engineering","salary":1000,"createdAt":"2024-01-02T03:04:05Z"}`

func Example() {
	p := Person{Name: "Sucipto", Age: 24, Department: "unset"}

	out, err := jsonv2.Dump(p, options.Options{Indent: 2})
	if err != nil {
		panic(err)
	}

	fmt.Println(string(out))

	// Output:
	// {
	//   "name": "Sucipto",
	//   "age": 24,
	//   "address": null,
	//   "department": "unset",
	//   "createdAt": "0001-01-01T00:00:00Z"
	// }
}

func TestParseFull(t *testing.T) {
	p, err := jsonv2.Parse[Person]([]byte(full))
	require.NoError(t, err)

	require.NotNil(t, p.Address)
	assert.Equal(t, "Jakarta", *p.Address)
	assert.Equal(t, 1000, p.Salary)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), p.CreatedAt)
}

func TestAgreesWithJSON(t *testing.T) {
	p, err := jsonv2.Parse[Person]([]byte(full))
	require.NoError(t, err)

	a, err := jsonv2.Dump(p)
	require.NoError(t, err)

	b, err := json.Dump(p)
	require.NoError(t, err)

	assert.Equal(t, string(b), string(a))
	assert.Equal(t, full, string(a))
}

func TestStrictness(t *testing.T) {
	_, err := jsonv2.Parse[map[string]int]([]byte(`{"a":1,"a":2}`))
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)

	_, err = jsonv2.Parse[map[string]int]([]byte(`{"a":1} {}`))
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)

	_, err = jsonv2.Parse[map[string]int]([]byte(`{"a":1`))
	require.ErrorIs(t, err, diagnostic.ErrFormatViolation)
}

func TestFloats(t *testing.T) {
	out, err := jsonv2.Dump([]float64{1, 0.25, 1e21})
	require.NoError(t, err)
	assert.Equal(t, `[1.0,0.25,1e+21]`, string(out))

	back, err := jsonv2.Parse[[]float64](out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.25, 1e21}, back)
}

func TestMissingField(t *testing.T) {
	_, err := jsonv2.Parse[Person]([]byte(`{"name":"Sucipto"}`))
	require.ErrorIs(t, err, diagnostic.ErrMissingField)
	assert.EqualError(t, err, "error at .age: missing field")
}

func TestParseObjects(t *testing.T) {
	flat, err := jsonv2.Parse[map[string]int]([]byte(`{"a":1,"b":2}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, flat)

	nested, err := jsonv2.Parse[map[string]map[string][]int]([]byte(`{"outer":{"x":[1,2],"y":[]},"empty":{}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string][]int{
		"outer": {"x": {1, 2}, "y": {}},
		"empty": {},
	}, nested)
}
