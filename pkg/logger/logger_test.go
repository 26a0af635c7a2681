package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized", func() {
			err := Init()
			So(err, ShouldBeNil)
			defer func() { So(Sync(), ShouldBeNil) }()

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(GetOrNop(), ShouldNotBeNil)
			})
		})

		Convey("When it is initialized with a nil writer", func() {
			err := InitWithWriter(nil)

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = Init() }()
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("battle").Info(ctx, "score computed",
				String("meal", "Pizza"),
				Float64("score", 103),
				Int64("meal_id", 2),
				Bool("upset", false),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries the message, component and fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "score computed")
				So(out, ShouldContainSubstring, "component=battle")
				So(out, ShouldContainSubstring, "meal=Pizza")
				So(out, ShouldContainSubstring, "meal_id=2")
				So(out, ShouldContainSubstring, "upset=false")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "visible")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When an unknown level is requested", func() {
			err := SetLevelString("loud")

			Convey("Then it should be rejected", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log level")
			})
		})
	})
}

func TestNopLogger(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := NewNop()

		Convey("Then logging does not panic", func() {
			So(func() {
				l.Info(context.Background(), "ignored", String("k", "v"))
				l.Named("x").Debug(context.Background(), "ignored")
			}, ShouldNotPanic)
		})
	})
}
