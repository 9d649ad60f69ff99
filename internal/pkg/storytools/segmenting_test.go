package storytools

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSegmentCount(t *testing.T) {
	Convey("SegmentCount 按平均每段6秒向上取整", t, func() {
		Convey("非正时长返回 0", func() {
			So(SegmentCount(0), ShouldEqual, 0)
			So(SegmentCount(-3), ShouldEqual, 0)
		})

		Convey("恰好整除时不多算", func() {
			So(SegmentCount(6), ShouldEqual, 1)
			So(SegmentCount(36), ShouldEqual, 6)
		})

		Convey("有余数时向上取整", func() {
			So(SegmentCount(6.1), ShouldEqual, 2)
			So(SegmentCount(33.0), ShouldEqual, 6)
			So(SegmentCount(35.9), ShouldEqual, 6)
		})
	})
}

func TestSegmentTimestamp(t *testing.T) {
	Convey("SegmentTimestamp 按窗口均分并四舍五入", t, func() {
		Convey("33 秒切 6 段", func() {
			n := SegmentCount(33.0)
			So(n, ShouldEqual, 6)

			expected := []string{"0-6s", "6-11s", "11-17s", "17-22s", "22-28s", "28-33s"}
			for i := 0; i < n; i++ {
				So(SegmentTimestamp(i, n, 33.0), ShouldEqual, expected[i])
			}
		})

		Convey("相邻分段首尾相接", func() {
			for _, duration := range []float64{7.5, 19, 33, 61.2, 120} {
				n := SegmentCount(duration)
				for i := 0; i < n-1; i++ {
					_, end := SegmentWindow(i, n, duration)
					start, _ := SegmentWindow(i+1, n, duration)
					So(start, ShouldEqual, end)
				}
			}
		})

		Convey("首段从 0 开始，末段到总时长结束", func() {
			n := SegmentCount(33.0)
			start, _ := SegmentWindow(0, n, 33.0)
			_, end := SegmentWindow(n-1, n, 33.0)
			So(start, ShouldEqual, 0)
			So(end, ShouldEqual, 33)
		})
	})
}

func TestAvgSecondsPerSegment(t *testing.T) {
	Convey("每段平均时长为 5 和 7 的均值", t, func() {
		So(AvgSecondsPerSegment(), ShouldEqual, 6.0)
		So(fmt.Sprintf("%.0f", AvgSecondsPerSegment()), ShouldEqual, "6")
	})
}
