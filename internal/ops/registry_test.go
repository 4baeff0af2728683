package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Names(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{
		"get_date", "get_datetime", "get_day", "get_month", "get_year",
		"lower", "strip", "upper",
	}, r.Names())
}

func TestGet_Aliases(t *testing.T) {
	r := Default()

	assert.True(t, r.Has("extract year"))
	assert.True(t, r.Has("  GET_YEAR "))
	assert.False(t, r.Has("explode"))
	assert.Nil(t, r.Get("explode"))
}

func TestDateComponents(t *testing.T) {
	r := Default()
	in := []any{"1984-07-21 10:00:00", nil, "garbage", "03/09/1990"}

	year := r.Get("get_year")
	require.NotNil(t, year)
	assert.Equal(t, []any{int64(1984), nil, nil, int64(1990)}, year(in))

	month := r.Get("extract month")
	assert.Equal(t, []any{int64(7), nil, nil, int64(3)}, month(in))

	day := r.Get("get_day")
	assert.Equal(t, []any{int64(21), nil, nil, int64(9)}, day(in))

	assert.Equal(t, "1984-07-21 10:00:00", in[0], "input must not be modified")
}

func TestGetDatetime(t *testing.T) {
	fn := Default().Get("get_datetime")

	assert.Equal(t, []any{"2001-02-03 00:00:00", nil}, fn([]any{"2001-02-03", "bad"}))
}

func TestText(t *testing.T) {
	r := Default()

	assert.Equal(t, []any{"abc", nil, "12"}, r.Get("lower")([]any{"ABC", nil, 12}))
	assert.Equal(t, []any{"x"}, r.Get("strip")([]any{"  x "}))
}

func TestMakeScalar(t *testing.T) {
	assert.Equal(t, []any{0, 0, 0}, MakeScalar(3, 0))
	assert.Empty(t, MakeScalar(0, "x"))
}
