package fragment

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	payloads := gen.SliceOf(gen.UInt8()).Map(func(b []uint8) []byte { return b })

	properties.Property("reassembly restores the payload", prop.ForAll(
		func(payload []byte) bool {
			a := NewAssembler()
			fragments := Disassemble(payload)
			var got []byte
			var done bool
			for _, f := range fragments {
				var err error
				if got, done, err = a.AddFragment(f, 42); err != nil {
					return false
				}
			}
			return done && bytes.Equal(got, payload) && a.Pending() == 0
		},
		payloads,
	))

	properties.Property("fragment count is ceil(len/Size), at least one", prop.ForAll(
		func(payload []byte) bool {
			want := max(1, (len(payload)+Size-1)/Size)
			return len(Disassemble(payload)) == want
		},
		payloads,
	))

	properties.Property("arrival order does not matter", prop.ForAll(
		func(payload []byte, seed int64) bool {
			fragments := Disassemble(payload)
			rand.New(rand.NewSource(seed)).Shuffle(len(fragments), func(i, j int) {
				fragments[i], fragments[j] = fragments[j], fragments[i]
			})
			a := NewAssembler()
			for i, f := range fragments {
				got, done, err := a.AddFragment(f, 7)
				if err != nil || done != (i == len(fragments)-1) {
					return false
				}
				if done {
					return bytes.Equal(got, payload)
				}
			}
			return false
		},
		payloads, gen.Int64(),
	))

	properties.TestingRun(t)
}
