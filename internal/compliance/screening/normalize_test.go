package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Jose/Perez-Garcia", "JOSE PEREZ GARCIA"},
		{"123 A.B.", "AB"},
		{"  john   smith  ", "JOHN SMITH"},
		{"O'Brien, Patrick", "OBRIEN PATRICK"},
		{"al-Qaida\tnetwork\n", "AL QAIDA NETWORK"},
		{"Straße", "STRASSE"},
		{"José", "JOS"},
		{"", ""},
		{"1234 !!", ""},
		{"a - b", "A B"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Jose/Perez-Garcia",
		"123 A.B.",
		"BANCO NACIONAL DE CUBA",
		"  mixed Case -- name//x ",
		"ÆSIR Ørsted",
		"",
		"-/-",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
