package story

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	storymodel "storyreel/internal/model/story"
)

func TestGenerateStyleSample(t *testing.T) {
	ctx := context.Background()

	Convey("风格样片生成", t, func() {
		Convey("生成样片并记录指纹，不写入正式风格字段", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			url, err := env.svc.GenerateStyleSample(ctx, "proj-1", &StyleSampleRequest{
				StylePrompt: "watercolor",
				AspectRatio: "9:16",
			})
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://img.test/1.png")

			p, _ := env.projectRepo.FindByID(ctx, "proj-1")
			So(p.StylePreviewURL, ShouldEqual, url)
			So(p.SampleStylePrompt, ShouldEqual, "watercolor")
			So(p.SampleAspectRatio, ShouldEqual, "9:16")
			So(p.StylePrompt, ShouldBeEmpty)
			So(p.AspectRatio, ShouldBeEmpty)
		})

		Convey("不在白名单的比例回退为 1:1", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.GenerateStyleSample(ctx, "proj-1", &StyleSampleRequest{
				StylePrompt: "watercolor",
				AspectRatio: "7:3",
			})
			So(err, ShouldBeNil)

			p, _ := env.projectRepo.FindByID(ctx, "proj-1")
			So(p.SampleAspectRatio, ShouldEqual, "1:1")
		})

		Convey("带分镜上下文时使用完整出图提示词", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.GenerateStyleSample(ctx, "proj-1", &StyleSampleRequest{
				StylePrompt:      "watercolor",
				AspectRatio:      "16:9",
				SegmentText:      "the tiger hunts",
				SceneDescription: "a snowy forest at dawn",
			})
			So(err, ShouldBeNil)
			So(env.imageGen.prompts[0], ShouldEqual,
				"a snowy forest at dawn. the tiger hunts. Style: watercolor. Aspect ratio 16:9, composition optimized for horizontal format.")
		})

		Convey("无分镜上下文时使用纯风格提示词", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.GenerateStyleSample(ctx, "proj-1", &StyleSampleRequest{
				StylePrompt: "watercolor",
				AspectRatio: "9:16",
			})
			So(err, ShouldBeNil)
			So(env.imageGen.prompts[0], ShouldEqual,
				"watercolor. Aspect ratio 9:16, composition optimized for vertical format.")
		})

		Convey("风格描述为空时拒绝", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.GenerateStyleSample(ctx, "proj-1", &StyleSampleRequest{StylePrompt: "  "})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestApproveStyle(t *testing.T) {
	ctx := context.Background()

	Convey("风格确认", t, func() {
		Convey("与最近样片指纹一致时写入正式风格", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{
				ID:                "proj-1",
				FinalScript:       "script",
				SampleStylePrompt: "watercolor",
				SampleAspectRatio: "9:16",
			})

			p, err := env.svc.ApproveStyle(ctx, "proj-1", "watercolor", "9:16")
			So(err, ShouldBeNil)
			So(p.StylePrompt, ShouldEqual, "watercolor")
			So(p.AspectRatio, ShouldEqual, "9:16")
		})

		Convey("从未出过样片时拒绝确认", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.ApproveStyle(ctx, "proj-1", "watercolor", "9:16")
			So(err, ShouldEqual, ErrStaleSample)
		})

		Convey("样片后改过提示词则指纹失效", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{
				ID:                "proj-1",
				FinalScript:       "script",
				SampleStylePrompt: "watercolor",
				SampleAspectRatio: "9:16",
			})

			_, err := env.svc.ApproveStyle(ctx, "proj-1", "oil painting", "9:16")
			So(err, ShouldEqual, ErrStaleSample)

			p, _ := env.projectRepo.FindByID(ctx, "proj-1")
			So(p.StylePrompt, ShouldBeEmpty)
		})

		Convey("比例按归一化后的值比对", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{
				ID:                "proj-1",
				FinalScript:       "script",
				SampleStylePrompt: "watercolor",
				SampleAspectRatio: "1:1",
			})

			// "7:3" 不在白名单，归一化为 1:1，与样片指纹一致
			p, err := env.svc.ApproveStyle(ctx, "proj-1", "watercolor", "7:3")
			So(err, ShouldBeNil)
			So(p.AspectRatio, ShouldEqual, "1:1")
		})
	})
}
