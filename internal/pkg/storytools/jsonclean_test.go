package storytools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanJSONContent(t *testing.T) {
	Convey("CleanJSONContent 剥离 markdown 包裹", t, func() {
		Convey("裸 JSON 原样返回", func() {
			So(CleanJSONContent(`{"a":1}`), ShouldEqual, `{"a":1}`)
		})

		Convey("去掉 json 代码块标记", func() {
			input := "```json\n{\"segments\": []}\n```"
			So(CleanJSONContent(input), ShouldEqual, `{"segments": []}`)
		})

		Convey("去掉无语言标记的代码块", func() {
			input := "```\n{\"a\": 1}\n```"
			So(CleanJSONContent(input), ShouldEqual, `{"a": 1}`)
		})

		Convey("去掉首尾空白", func() {
			So(CleanJSONContent("  \n{\"a\":1}\n  "), ShouldEqual, `{"a":1}`)
		})
	})
}
