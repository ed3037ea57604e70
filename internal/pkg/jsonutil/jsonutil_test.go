package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompactAndIndent(t *testing.T) {
	v := map[string]any{"b": []int{1, 2}}
	assert.Equal(t, `{"b":[1,2]}`, Compact(v))
	assert.Equal(t, "{\n  \"b\": [\n    1,\n    2\n  ]\n}", Indent(v))
	assert.Equal(t, "", Compact(make(chan int)))
}
