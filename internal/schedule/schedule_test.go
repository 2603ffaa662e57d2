package schedule

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/spangle/simplebackup/internal/domain"
)

type recordingRegistrar struct {
	specs []string
	runs  []func(ctx context.Context) error
}

func (r *recordingRegistrar) Add(spec string, run func(ctx context.Context) error) error {
	r.specs = append(r.specs, spec)
	r.runs = append(r.runs, run)
	return nil
}

func TestPartitions(t *testing.T) {
	ts := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)

	Convey("Given a backup timestamp", t, func() {
		Convey("Year-granularity policies partition by year", func() {
			So(Once{}.Partition(ts), ShouldEqual, "2023")
			So(Monthly{}.Partition(ts), ShouldEqual, "2023")
			So(Weekly{}.Partition(ts), ShouldEqual, "2023")
		})

		Convey("Daily partitions by year and month", func() {
			So(Daily{}.Partition(ts), ShouldEqual, "2023/06")
		})

		Convey("Hourly and FiveMinutes partition by full date", func() {
			So(Hourly{}.Partition(ts), ShouldEqual, "2023/06/15")
			So(FiveMinutes{}.Partition(ts), ShouldEqual, "2023/06/15")
		})
	})
}

func TestRegisterCadence(t *testing.T) {
	Convey("Given a trigger registrar", t, func() {
		reg := &recordingRegistrar{}
		job := func(ctx context.Context, source domain.Source) error { return nil }

		Convey("Once registers nothing", func() {
			So(Once{}.Register(reg, job, nil), ShouldBeNil)
			So(len(reg.specs), ShouldEqual, 0)
		})

		Convey("Daily registers one midnight trigger", func() {
			So(Daily{}.Register(reg, job, nil), ShouldBeNil)
			So(reg.specs, ShouldResemble, []string{"0 0 * * *"})
		})

		Convey("Weekly registers Monday midnight", func() {
			So(Weekly{}.Register(reg, job, nil), ShouldBeNil)
			So(reg.specs, ShouldResemble, []string{"0 0 * * 1"})
		})

		Convey("Hourly registers minute zero", func() {
			So(Hourly{}.Register(reg, job, nil), ShouldBeNil)
			So(reg.specs, ShouldResemble, []string{"0 * * * *"})
		})

		Convey("FiveMinutes registers twelve distinct per-hour offsets", func() {
			So(FiveMinutes{}.Register(reg, job, nil), ShouldBeNil)
			So(len(reg.specs), ShouldEqual, 12)

			seen := map[string]bool{}
			for _, spec := range reg.specs {
				seen[spec] = true
			}
			So(len(seen), ShouldEqual, 12)
			So(seen["0 * * * *"], ShouldBeTrue)
			So(seen["5 * * * *"], ShouldBeTrue)
			So(seen["55 * * * *"], ShouldBeTrue)
		})
	})
}

func TestMonthlyGating(t *testing.T) {
	Convey("Given a monthly schedule registered as a daily trigger", t, func() {
		reg := &recordingRegistrar{}
		calls := 0
		job := func(ctx context.Context, source domain.Source) error {
			calls++
			return nil
		}

		So(Monthly{}.Register(reg, job, nil), ShouldBeNil)
		So(reg.specs, ShouldResemble, []string{"0 0 * * *"})
		gated := reg.runs[0]

		originalNow := now
		defer func() { now = originalNow }()

		Convey("The job body runs on the first of the month", func() {
			now = func() time.Time { return time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC) }
			So(gated(context.Background()), ShouldBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("The job body is a no-op on any other day", func() {
			for day := 2; day <= 28; day++ {
				d := day
				now = func() time.Time { return time.Date(2023, 7, d, 0, 0, 0, 0, time.UTC) }
				So(gated(context.Background()), ShouldBeNil)
			}
			So(calls, ShouldEqual, 0)
		})
	})
}
