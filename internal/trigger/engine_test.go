package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Errorf(string, ...interface{}) {}

func TestEngine(t *testing.T) {
	Convey("Given a trigger engine", t, func() {
		base := time.Date(2024, 3, 1, 12, 0, 30, 0, time.UTC)
		engine := New(noopLogger{})
		engine.now = func() time.Time { return base }
		ctx := context.Background()

		Convey("Add function", func() {
			Convey("It accepts a standard cron spec", func() {
				err := engine.Add("0 0 * * *", func(ctx context.Context) error { return nil })
				So(err, ShouldBeNil)
				So(engine.Len(), ShouldEqual, 1)
			})

			Convey("It rejects an invalid spec", func() {
				err := engine.Add("not a spec", func(ctx context.Context) error { return nil })
				So(err, ShouldNotBeNil)
				So(engine.Len(), ShouldEqual, 0)
			})
		})

		Convey("RunPending function", func() {
			var fired []string
			add := func(spec, tag string) {
				So(engine.Add(spec, func(ctx context.Context) error {
					fired = append(fired, tag)
					return nil
				}), ShouldBeNil)
			}

			Convey("A trigger fires once its due time has passed", func() {
				add("0 13 * * *", "one pm")

				engine.RunPending(ctx, base)
				So(fired, ShouldBeEmpty)

				engine.RunPending(ctx, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
				So(fired, ShouldResemble, []string{"one pm"})
			})

			Convey("A fired trigger is rescheduled for its next cadence", func() {
				add("0 13 * * *", "one pm")
				due := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

				engine.RunPending(ctx, due)
				engine.RunPending(ctx, due.Add(time.Minute))
				So(len(fired), ShouldEqual, 1)

				engine.RunPending(ctx, due.Add(24*time.Hour))
				So(len(fired), ShouldEqual, 2)
			})

			Convey("Due triggers execute in registration order", func() {
				add("0 13 * * *", "first")
				add("0 13 * * *", "second")
				add("0 13 * * *", "third")

				engine.RunPending(ctx, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
				So(fired, ShouldResemble, []string{"first", "second", "third"})
			})

			Convey("A failing trigger does not stop later entries", func() {
				So(engine.Add("0 13 * * *", func(ctx context.Context) error {
					return errors.New("boom")
				}), ShouldBeNil)
				add("0 13 * * *", "after failure")

				engine.RunPending(ctx, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
				So(fired, ShouldResemble, []string{"after failure"})
			})

			Convey("A panicking trigger does not stop later entries", func() {
				So(engine.Add("0 13 * * *", func(ctx context.Context) error {
					panic("boom")
				}), ShouldBeNil)
				add("0 13 * * *", "after panic")

				So(func() {
					engine.RunPending(ctx, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))
				}, ShouldNotPanic)
				So(fired, ShouldResemble, []string{"after panic"})
			})
		})

		Convey("Run function", func() {
			Convey("It returns once the context is cancelled", func() {
				runCtx, cancel := context.WithCancel(ctx)
				done := make(chan error, 1)
				go func() { done <- engine.Run(runCtx) }()

				cancel()
				select {
				case err := <-done:
					So(errors.Is(err, context.Canceled), ShouldBeTrue)
				case <-time.After(3 * time.Second):
					t.Fatal("engine did not stop on context cancellation")
				}
			})
		})
	})
}
