package integrators

import (
	"testing"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/physics"
)

func benchIntegrator(b *testing.B, integ dynamo.Integrator, n int) {
	body, err := physics.NewPressureBody(n, 1.0, dynamo.DefaultParams())
	if err != nil {
		b.Fatal(err)
	}
	cur := body.InitialState()
	scratch := cur.Clone()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.Step(body, cur, scratch, 0.001); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeun(b *testing.B)   { benchIntegrator(b, NewHeun(), 32) }
func BenchmarkEuler(b *testing.B)  { benchIntegrator(b, NewEuler(), 32) }
func BenchmarkVerlet(b *testing.B) { benchIntegrator(b, NewVerlet(), 32) }
func BenchmarkRK4(b *testing.B)    { benchIntegrator(b, NewRK4(), 32) }

func BenchmarkHeun_Ring256(b *testing.B) { benchIntegrator(b, NewHeun(), 256) }
