package stats_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/TissotPA/Match/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatLine_ApplyDelta(t *testing.T) {
	Convey("Given a zero stat line", t, func() {
		var s stats.StatLine

		Convey("When incrementing a made counter", func() {
			So(s.ApplyDelta(stats.ThreeMade, stats.Increment), ShouldBeNil)

			Convey("Then the paired attempted counter rises with it", func() {
				So(s.ThreeMade, ShouldEqual, 1)
				So(s.ThreeAttempted, ShouldEqual, 1)
			})

			Convey("And decrementing the made counter leaves attempts alone", func() {
				So(s.ApplyDelta(stats.ThreeMade, stats.Decrement), ShouldBeNil)
				So(s.ThreeMade, ShouldEqual, 0)
				So(s.ThreeAttempted, ShouldEqual, 1)
			})
		})

		Convey("When incrementing an attempted counter", func() {
			So(s.ApplyDelta(stats.FreeThrowAttempted, stats.Increment), ShouldBeNil)

			Convey("Then only that counter changes", func() {
				So(s.FreeThrowAttempted, ShouldEqual, 1)
				So(s.FreeThrowMade, ShouldEqual, 0)
			})
		})

		Convey("When decrementing a counter already at zero", func() {
			So(s.ApplyDelta(stats.Rebounds, stats.Decrement), ShouldBeNil)
			So(s.ApplyDelta(stats.Rebounds, stats.Decrement), ShouldBeNil)

			Convey("Then it stays at zero", func() {
				So(s.Rebounds, ShouldEqual, 0)
			})
		})

		Convey("When the field is unknown", func() {
			err := s.ApplyDelta(stats.Field(99), stats.Increment)

			Convey("Then ErrInvalidField is returned and nothing changes", func() {
				So(errors.Is(err, stats.ErrInvalidField), ShouldBeTrue)
				So(s, ShouldResemble, stats.StatLine{})
			})
		})

		Convey("When the direction is unknown", func() {
			err := s.ApplyDelta(stats.Assists, stats.Direction(0))

			Convey("Then ErrInvalidDirection is returned", func() {
				So(errors.Is(err, stats.ErrInvalidDirection), ShouldBeTrue)
				So(s.Assists, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a line with more makes than attempts", t, func() {
		s := stats.StatLine{InteriorMade: 4, InteriorAttempted: 1, ExteriorMade: 2}

		Convey("When any delta is applied", func() {
			So(s.ApplyDelta(stats.Fouls, stats.Increment), ShouldBeNil)

			Convey("Then the repair pass raises attempts to makes", func() {
				So(s.InteriorAttempted, ShouldEqual, 4)
				So(s.ExteriorAttempted, ShouldEqual, 2)
				So(s.Consistent(), ShouldBeTrue)
			})
		})
	})
}

func TestStatLine_InvariantHoldsForRandomSequences(t *testing.T) {
	Convey("Given random delta sequences", t, func() {
		rng := rand.New(rand.NewSource(7))
		fields := stats.Fields()

		Convey("Then made never exceeds attempted after any call", func() {
			for run := 0; run < 50; run++ {
				var s stats.StatLine
				for step := 0; step < 200; step++ {
					f := fields[rng.Intn(len(fields))]
					d := stats.Increment
					if rng.Intn(2) == 0 {
						d = stats.Decrement
					}
					So(s.ApplyDelta(f, d), ShouldBeNil)
					So(s.Consistent(), ShouldBeTrue)
					v, err := s.Get(f)
					So(err, ShouldBeNil)
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
				}
			}
		})
	})
}

func TestStatLine_DerivedScores(t *testing.T) {
	Convey("Given made shots in every category", t, func() {
		s := stats.StatLine{
			FreeThrowMade: 3, FreeThrowAttempted: 3,
			InteriorMade: 2, InteriorAttempted: 2,
			ExteriorMade: 1, ExteriorAttempted: 1,
			ThreeMade: 1, ThreeAttempted: 1,
		}

		Convey("Then total points is 3+4+2+3", func() {
			So(s.TotalPoints(), ShouldEqual, 12)
		})
	})

	Convey("Given a line with misses and a turnover", t, func() {
		s := stats.StatLine{
			InteriorAttempted: 5, InteriorMade: 2,
			Rebounds: 3, Assists: 1, Turnovers: 1,
		}

		Convey("Then the evaluation subtracts misses and turnovers", func() {
			So(s.TotalPoints(), ShouldEqual, 4)
			So(s.MissedShots(), ShouldEqual, 3)
			So(s.MissedFreeThrows(), ShouldEqual, 0)
			So(s.Evaluation(), ShouldEqual, 4)
		})
	})

	Convey("Given a zero line", t, func() {
		var s stats.StatLine

		Convey("Then points and evaluation are zero", func() {
			So(s.TotalPoints(), ShouldEqual, 0)
			So(s.Evaluation(), ShouldEqual, 0)
		})
	})
}

func TestStatLine_SetAndReset(t *testing.T) {
	Convey("Given a stat line", t, func() {
		var s stats.StatLine

		Convey("When setting a negative value", func() {
			So(s.Set(stats.Steals, -3), ShouldBeNil)

			Convey("Then it is clamped to zero", func() {
				So(s.Steals, ShouldEqual, 0)
			})
		})

		Convey("When setting makes above attempts", func() {
			So(s.Set(stats.FreeThrowMade, 6), ShouldBeNil)

			Convey("Then attempts are repaired", func() {
				So(s.FreeThrowAttempted, ShouldEqual, 6)
			})
		})

		Convey("When resetting", func() {
			So(s.Set(stats.Blocks, 2), ShouldBeNil)
			s.Reset()

			Convey("Then every counter is zero", func() {
				So(s, ShouldResemble, stats.StatLine{})
			})
		})
	})
}

func TestParseFieldAndDirection(t *testing.T) {
	Convey("Given wire names", t, func() {
		Convey("Then every field round-trips through its name", func() {
			for _, f := range stats.Fields() {
				got, err := stats.ParseField(f.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, f)
			}
		})

		Convey("Then names are matched case-insensitively", func() {
			f, err := stats.ParseField("TIRS3REUSSIS")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, stats.ThreeMade)
		})

		Convey("Then unknown names fail with ErrInvalidField", func() {
			_, err := stats.ParseField("dunks")
			So(errors.Is(err, stats.ErrInvalidField), ShouldBeTrue)
		})
	})

	Convey("Given direction words", t, func() {
		d, err := stats.ParseDirection("plus")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, stats.Increment)

		d, err = stats.ParseDirection("-")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, stats.Decrement)

		_, err = stats.ParseDirection("sideways")
		So(errors.Is(err, stats.ErrInvalidDirection), ShouldBeTrue)
	})
}

func TestStatLine_Add(t *testing.T) {
	Convey("Given two stat lines", t, func() {
		a := stats.StatLine{InteriorAttempted: 3, InteriorMade: 1, Rebounds: 4, Blocks: 1}
		b := stats.StatLine{InteriorAttempted: 2, InteriorMade: 2, FreeThrowAttempted: 5, Turnovers: 2, Blocks: 3}

		Convey("When one is added to the other", func() {
			a.Add(b)

			Convey("Then every counter is the sum of both", func() {
				So(a, ShouldResemble, stats.StatLine{
					InteriorAttempted:  5,
					InteriorMade:       3,
					FreeThrowAttempted: 5,
					Rebounds:           4,
					Turnovers:          2,
					Blocks:             4,
				})
				So(a.Consistent(), ShouldBeTrue)
			})
		})

		Convey("When every field is set on both", func() {
			var sum, one stats.StatLine
			for i, f := range stats.Fields() {
				So(one.Set(f, i+1), ShouldBeNil)
			}
			want := one
			sum.Add(one)
			sum.Add(one)

			Convey("Then each field is doubled", func() {
				for _, f := range stats.Fields() {
					got, err := sum.Get(f)
					So(err, ShouldBeNil)
					v, _ := want.Get(f)
					So(got, ShouldEqual, 2*v)
				}
			})
		})
	})
}

func TestPercentage(t *testing.T) {
	Convey("Given made and attempted counts", t, func() {
		So(stats.Percentage(0, 0), ShouldEqual, 0)
		So(stats.Percentage(1, 3), ShouldEqual, 33)
		So(stats.Percentage(2, 3), ShouldEqual, 67)
		So(stats.Percentage(1, 8), ShouldEqual, 13)
		So(stats.Percentage(5, 5), ShouldEqual, 100)
	})
}
