package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/physics"
)

func squareParams() dynamo.Params {
	return dynamo.Params{Mass: 1.0, Elasticity: 50, Damping: 1, Pressure: 0}
}

var _ = Describe("PressureBody", func() {
	Describe("construction", func() {
		It("rejects rings with fewer than three particles", func() {
			for _, n := range []int{-1, 0, 1, 2} {
				_, err := physics.NewPressureBody(n, 1.0, dynamo.DefaultParams())
				Expect(err).To(MatchError(dynamo.ErrInvalidTopology))
			}
		})

		DescribeTable("rejects invalid parameters",
			func(radius float64, mutate func(*dynamo.Params)) {
				p := dynamo.DefaultParams()
				mutate(&p)
				_, err := physics.NewPressureBody(8, radius, p)
				Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			},
			Entry("zero radius", 0.0, func(*dynamo.Params) {}),
			Entry("negative radius", -1.0, func(*dynamo.Params) {}),
			Entry("NaN radius", math.NaN(), func(*dynamo.Params) {}),
			Entry("zero mass", 1.0, func(p *dynamo.Params) { p.Mass = 0 }),
			Entry("negative mass", 1.0, func(p *dynamo.Params) { p.Mass = -2 }),
			Entry("infinite pressure", 1.0, func(p *dynamo.Params) { p.Pressure = math.Inf(1) }),
		)

		It("rejects unknown volume methods", func() {
			_, err := physics.NewPressureBody(8, 1.0, dynamo.DefaultParams(), physics.WithVolumeMethod("bogus"))
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("sets every rest length to the initial adjacent distance", func() {
			for _, n := range []int{3, 4, 7, 16, 64} {
				for _, radius := range []float64{0.1, 1.0, 3.5} {
					body, err := physics.NewPressureBody(n, radius, dynamo.DefaultParams())
					Expect(err).NotTo(HaveOccurred())

					s := body.InitialState()
					for _, sp := range body.Springs() {
						dist := r2.Norm(r2.Sub(s[sp.I].Position, s[sp.J].Position))
						Expect(sp.RestLength).To(BeNumerically("~", dist, 1e-12))
					}
				}
			}
		})

		It("wires the ring topology", func() {
			body, err := physics.NewPressureBody(6, 1.0, dynamo.DefaultParams())
			Expect(err).NotTo(HaveOccurred())

			s := body.InitialState()
			springs := body.Springs()
			Expect(springs).To(HaveLen(6))
			for i := range s {
				next := (i + 1) % len(s)
				Expect(springs[i].I).To(Equal(i))
				Expect(springs[i].J).To(Equal(next))
				Expect(s[i].NextSpring).To(Equal(i))
				Expect(s[next].PrevSpring).To(Equal(i))
			}
		})

		It("builds the four particle square", func() {
			body, err := physics.NewPressureBody(4, 1.0, squareParams())
			Expect(err).NotTo(HaveOccurred())

			s := body.InitialState()
			for k := 0; k < 4; k++ {
				angle := math.Pi / 2 * float64(k+1)
				Expect(s[k].Position.X).To(BeNumerically("~", math.Sin(angle), 1e-12))
				Expect(s[k].Position.Y).To(BeNumerically("~", math.Cos(angle), 1e-12))
			}
			for _, sp := range body.Springs() {
				Expect(sp.RestLength).To(BeNumerically("~", math.Sqrt2, 1e-12))
			}
		})

		It("hands out independent initial states", func() {
			body, _ := physics.NewPressureBody(5, 1.0, dynamo.DefaultParams())
			a := body.InitialState()
			a[0].Position.X = 42
			Expect(body.InitialState()[0].Position.X).NotTo(Equal(42.0))
		})
	})

	Describe("volume", func() {
		It("matches the regular polygon area within 1% for N >= 8", func() {
			for _, n := range []int{8, 12, 32, 100} {
				radius := 2.0
				body, err := physics.NewPressureBody(n, radius, dynamo.DefaultParams())
				Expect(err).NotTo(HaveOccurred())

				area := 0.5 * float64(n) * radius * radius * math.Sin(2*math.Pi/float64(n))
				v := body.Volume(body.InitialState())
				Expect(math.Abs(v-area) / area).To(BeNumerically("<", 0.01))
				Expect(body.RestArea()).To(BeNumerically("~", area, 1e-12))
			}
		})

		It("gives the square area with both estimators", func() {
			for _, m := range []physics.VolumeMethod{physics.VolumeDivergence, physics.VolumeExtent} {
				body, err := physics.NewPressureBody(4, 1.0, squareParams(), physics.WithVolumeMethod(m))
				Expect(err).NotTo(HaveOccurred())
				Expect(body.Volume(body.InitialState())).To(BeNumerically("~", 2.0, 1e-12))
			}
		})

		It("turns negative for an inverted ring", func() {
			body, _ := physics.NewPressureBody(8, 1.0, dynamo.DefaultParams())
			s := body.InitialState()
			for i := range s {
				s[i].Position.X = -s[i].Position.X
			}
			Expect(body.Volume(s)).To(BeNumerically("<", 0))

			_, err := body.Accumulate(s)
			Expect(err).To(MatchError(dynamo.ErrDegenerateVolume))
		})
	})

	Describe("Accumulate", func() {
		It("produces zero force at rest without pressure", func() {
			body, _ := physics.NewPressureBody(4, 1.0, squareParams())
			s := body.InitialState()

			v, err := body.Accumulate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", 2.0, 1e-12))
			for i := range s {
				Expect(s[i].Force.X).To(BeNumerically("~", 0, 1e-12))
				Expect(s[i].Force.Y).To(BeNumerically("~", 0, 1e-12))
			}
		})

		It("keeps the net internal force at zero", func() {
			p := dynamo.DefaultParams()
			body, _ := physics.NewPressureBody(10, 1.5, p)
			s := body.InitialState()
			for i := range s {
				s[i].Position.X += 0.05 * math.Sin(float64(3*i))
				s[i].Velocity = dynamo.Vec2{X: 0.3 * math.Cos(float64(i)), Y: -0.2 * float64(i%3)}
			}

			_, err := body.Accumulate(s)
			Expect(err).NotTo(HaveOccurred())

			var net dynamo.Vec2
			for i := range s {
				net = r2.Add(net, s[i].Force)
			}
			Expect(net.X).To(BeNumerically("~", 0, 1e-9))
			Expect(net.Y).To(BeNumerically("~", 0, 1e-9))
		})

		It("pushes every particle outward under pressure", func() {
			p := dynamo.DefaultParams()
			p.Pressure = 10
			body, _ := physics.NewPressureBody(12, 1.0, p)
			s := body.InitialState()

			_, err := body.Accumulate(s)
			Expect(err).NotTo(HaveOccurred())
			for i := range s {
				Expect(r2.Dot(s[i].Force, s[i].Position)).To(BeNumerically(">", 0))
			}
		})

		It("pulls a uniformly stretched ring inward", func() {
			body, _ := physics.NewPressureBody(4, 1.0, squareParams())
			s := body.InitialState()
			for i := range s {
				s[i].Position = r2.Scale(1.1, s[i].Position)
			}

			_, err := body.Accumulate(s)
			Expect(err).NotTo(HaveOccurred())
			for i := range s {
				Expect(r2.Dot(s[i].Force, s[i].Position)).To(BeNumerically("<", 0))
			}
			Expect(s[0].Force.X).To(BeNumerically("~", -s[2].Force.X, 1e-12))
			Expect(s[0].Force.Y).To(BeNumerically("~", -s[2].Force.Y, 1e-12))
		})

		It("derives unit outward particle normals", func() {
			body, _ := physics.NewPressureBody(9, 2.0, dynamo.DefaultParams())
			s := body.InitialState()

			_, err := body.Accumulate(s)
			Expect(err).NotTo(HaveOccurred())
			for i := range s {
				Expect(r2.Norm(s[i].Normal)).To(BeNumerically("~", 1, 1e-12))
				Expect(r2.Dot(s[i].Normal, r2.Unit(s[i].Position))).To(BeNumerically("~", 1, 1e-9))
			}
		})

		It("surfaces a degenerate volume instead of NaN when the ring collapses", func() {
			body, _ := physics.NewPressureBody(6, 1.0, dynamo.DefaultParams())
			s := body.InitialState()
			for i := range s {
				s[i].Position = dynamo.Vec2{X: 0.5, Y: -0.25}
			}

			_, err := body.Accumulate(s)
			Expect(err).To(MatchError(dynamo.ErrDegenerateVolume))
			for i := range s {
				Expect(dynamo.Finite(s[i].Force.X, s[i].Force.Y, s[i].Normal.X, s[i].Normal.Y)).To(BeTrue())
			}
			for _, sp := range body.Springs() {
				Expect(sp.Normal).To(Equal(dynamo.Vec2{}))
			}
		})
	})

	Describe("parameters", func() {
		It("tunes pressure and rejects a non-positive mass", func() {
			body, _ := physics.NewPressureBody(8, 1.0, dynamo.DefaultParams())

			Expect(body.SetParam("pressure", 3)).To(Succeed())
			Expect(body.GetParams()["pressure"]).To(Equal(3.0))

			Expect(body.SetParam("mass", 0)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(body.SetParam("viscosity", 1)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(body.SetParam("damping", math.NaN())).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(body.Mass()).To(Equal(1.0))
		})
	})

	It("has zero energy at rest", func() {
		body, _ := physics.NewPressureBody(8, 1.0, dynamo.DefaultParams())
		Expect(body.Energy(body.InitialState())).To(BeNumerically("~", 0, 1e-12))
	})
})
