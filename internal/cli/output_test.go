package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Render(sample{Name: "a", Value: 1.5}, nil))

	var got sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample{Name: "a", Value: 1.5}, got)
}

func TestOutputFormatter_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "yaml", Writer: buf}

	require.NoError(t, f.Render(sample{Name: "a", Value: 1.5}, nil))
	assert.Equal(t, "name: a\nvalue: 1.5\n", buf.String())
}

func TestOutputFormatter_TextAligns(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.Render(nil, func(w io.Writer) {
		fmt.Fprintln(w, "A\tB")
		fmt.Fprintln(w, "long\tx")
	})
	require.NoError(t, err)
	assert.Equal(t, "A     B\nlong  x\n", buf.String())
}

func TestOutputFormatter_UnknownFormat(t *testing.T) {
	f := &OutputFormatter{Format: "xml", Writer: io.Discard}
	assert.Error(t, f.Render(nil, func(io.Writer) {}))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10.00"},
		{2.345, "2.35"},
		{-1.005, "-1.01"},
		{0.004, "0.00"},
		{24.24, "24.24"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in), "money(%v)", tt.in)
	}
}

func TestSigned_NoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "3.50", signed(3.5))
	assert.Equal(t, "-3.50", signed(-3.5))
}
