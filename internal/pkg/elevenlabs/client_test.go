package elevenlabs

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/config"
)

func TestNewClient(t *testing.T) {
	Convey("创建客户端", t, func() {
		Convey("缺少 API Key 时返回错误", func() {
			client, err := NewClient(&config.TTSConfig{})
			So(err, ShouldNotBeNil)
			So(client, ShouldBeNil)
		})

		Convey("有 API Key 时使用默认地址", func() {
			client, err := NewClient(&config.TTSConfig{APIKey: "test-key"})
			So(err, ShouldBeNil)
			So(client, ShouldNotBeNil)
			So(client.baseURL, ShouldEqual, defaultBaseURL)
		})

		Convey("自定义 BaseURL 时去掉末尾斜杠", func() {
			client, err := NewClient(&config.TTSConfig{
				APIKey:  "test-key",
				BaseURL: "https://tts.example.com/v1/",
			})
			So(err, ShouldBeNil)
			So(client.baseURL, ShouldEqual, "https://tts.example.com/v1")
		})
	})
}

func TestEstimateDuration(t *testing.T) {
	Convey("按 128kbps 估算音频时长", t, func() {
		Convey("空数据时长为 0", func() {
			So(EstimateDuration(nil), ShouldEqual, 0)
			So(EstimateDuration([]byte{}), ShouldEqual, 0)
		})

		Convey("131072 字节恰好为 8 秒", func() {
			// 131072*8/131072 = 8
			So(EstimateDuration(make([]byte, 131072)), ShouldEqual, 8.0)
		})

		Convey("16384 字节为 1 秒", func() {
			So(EstimateDuration(make([]byte, 16384)), ShouldEqual, 1.0)
		})

		Convey("结果保留两位小数", func() {
			// 100000*8/131072 = 6.1035... -> 6.1
			So(EstimateDuration(make([]byte, 100000)), ShouldEqual, 6.1)
			// 54321*8/131072 = 3.31549... -> 3.32
			So(EstimateDuration(make([]byte, 54321)), ShouldEqual, 3.32)
		})
	})
}
