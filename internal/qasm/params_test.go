package qasm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalParam(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"3.14", 3.14, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"42", 42, true},
		{"3.14e-2", 0.0314, true},
		{".5", 0.5, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"π", math.Pi, true},

		// Pi fractions and coefficients
		{"pi/2", math.Pi / 2, true},
		{"2pi", 2 * math.Pi, true},
		{"2*pi", 2 * math.Pi, true},
		{"3pi/4", 3 * math.Pi / 4, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},

		// Negative
		{"-pi", -math.Pi, true},
		{"-pi/2", -math.Pi / 2, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{"-2pi", -2 * math.Pi, true},

		// Arithmetic
		{"1+2*3", 7, true},
		{"(1+2)*3", 9, true},
		{"pi - pi/4", 3 * math.Pi / 4, true},
		{"2^3", 8, true},
		{"2^-1", 0.5, true},
		{"--1", 1, true},
		{"sqrt(2)/2", math.Sqrt2 / 2, true},
		{"cos(pi)", -1, true},
		{"ln(exp(1.5))", 1.5, true},

		// Whitespace
		{" pi ", math.Pi, true},
		{" pi / 2 ", math.Pi / 2, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		// Invalid
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
		{"(pi", 0, false},
		{"pi)", 0, false},
		{"sin pi", 0, false},
		{"1..2", 0, false},
		{"2 $ 3", 0, false},
	}

	for _, tt := range tests {
		got, err := EvalParam(tt.input)
		if !tt.ok {
			assert.Error(t, err, "EvalParam(%q)", tt.input)
			continue
		}
		if assert.NoError(t, err, "EvalParam(%q)", tt.input) {
			assert.InDelta(t, tt.want, got, 1e-10, "EvalParam(%q)", tt.input)
		}
	}
}

func TestSplitParams(t *testing.T) {
	assert.Equal(t, []string{"a", " b"}, splitParams("a, b"))
	assert.Equal(t, []string{"sin(pi, 2)", "3"}, splitParams("sin(pi, 2),3"))
	assert.Equal(t, []string{""}, splitParams(""))
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 3, "pi/3"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi, "-pi"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatParam(tt.input), "formatParam(%g)", tt.input)
	}
}

func TestFormatParamRoundTrip(t *testing.T) {
	for _, v := range []float64{0.1234567890123, -2.5e-7, 7 * math.Pi / 5} {
		got, err := EvalParam(formatParam(v))
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
