package story

import (
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/elevenlabs"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	Convey("项目创建", t, func() {
		Convey("去除首尾空白后入库", func() {
			env := newTestEnv()
			project, err := env.svc.CreateProject(ctx, "  a story about a snow tiger  ")
			So(err, ShouldBeNil)
			So(project.ID, ShouldNotBeEmpty)
			So(project.FinalScript, ShouldEqual, "a story about a snow tiger")
		})

		Convey("脚本为空时拒绝创建", func() {
			env := newTestEnv()
			_, err := env.svc.CreateProject(ctx, "   ")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGetProject(t *testing.T) {
	ctx := context.Background()

	Convey("项目查询", t, func() {
		Convey("返回项目及按 index 升序的分镜", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})
			env.seedSlots("proj-1", 3)

			detail, err := env.svc.GetProject(ctx, "proj-1")
			So(err, ShouldBeNil)
			So(detail.Project.ID, ShouldEqual, "proj-1")
			So(detail.Slots, ShouldHaveLength, 3)
			for i, slot := range detail.Slots {
				So(slot.Index, ShouldEqual, i)
			}
		})

		Convey("项目不存在返回 ErrProjectNotFound", func() {
			env := newTestEnv()
			_, err := env.svc.GetProject(ctx, "missing")
			So(err, ShouldEqual, ErrProjectNotFound)
		})
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()

	Convey("项目更新", t, func() {
		Convey("只更新提供的字段", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{
				ID:          "proj-1",
				FinalScript: "script",
				StylePrompt: "watercolor",
			})

			ratio := "16:9"
			detail, err := env.svc.UpdateProject(ctx, "proj-1", &ProjectPatch{AspectRatio: &ratio})
			So(err, ShouldBeNil)
			So(detail.Project.AspectRatio, ShouldEqual, "16:9")
			So(detail.Project.StylePrompt, ShouldEqual, "watercolor")
		})

		Convey("没有任何字段时拒绝更新", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.UpdateProject(ctx, "proj-1", &ProjectPatch{})
			So(err, ShouldNotBeNil)
		})

		Convey("项目不存在返回 ErrProjectNotFound", func() {
			env := newTestEnv()
			prompt := "watercolor"
			_, err := env.svc.UpdateProject(ctx, "missing", &ProjectPatch{StylePrompt: &prompt})
			So(err, ShouldEqual, ErrProjectNotFound)
		})
	})
}

func TestGenerateNarration(t *testing.T) {
	ctx := context.Background()

	Convey("旁白合成", t, func() {
		Convey("合成、上传并按 128kbps 回写时长", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "a story"})
			// 131072 字节 = 8 秒
			env.tts.audio = make([]byte, 131072)

			result, err := env.svc.GenerateNarration(ctx, "proj-1", "voice-1", "")
			So(err, ShouldBeNil)
			So(result.AudioDuration, ShouldEqual, 8.0)
			So(strings.HasPrefix(result.AudioURL, "https://cdn.test/projects/proj-1/narration-"), ShouldBeTrue)

			p, _ := env.projectRepo.FindByID(ctx, "proj-1")
			So(p.TTSAudioURL, ShouldEqual, result.AudioURL)
			So(p.AudioDuration, ShouldEqual, 8.0)
		})

		Convey("未提供文本时默认使用定稿脚本", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "the final script"})
			env.tts.audio = []byte("mp3 bytes")

			_, err := env.svc.GenerateNarration(ctx, "proj-1", "voice-1", "")
			So(err, ShouldBeNil)
		})

		Convey("音色为空时拒绝合成", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})

			_, err := env.svc.GenerateNarration(ctx, "proj-1", "", "")
			So(err, ShouldNotBeNil)
		})

		Convey("项目不存在返回 ErrProjectNotFound", func() {
			env := newTestEnv()
			_, err := env.svc.GenerateNarration(ctx, "missing", "voice-1", "")
			So(err, ShouldEqual, ErrProjectNotFound)
		})
	})
}

func TestListVoices(t *testing.T) {
	ctx := context.Background()

	Convey("音色列表", t, func() {
		Convey("未配置缓存时直连上游", func() {
			env := newTestEnv()
			env.tts.voices = []elevenlabs.Voice{
				{VoiceID: "v1", Name: "Aria"},
				{VoiceID: "v2", Name: "Brian"},
			}

			voices, err := env.svc.ListVoices(ctx)
			So(err, ShouldBeNil)
			So(voices, ShouldHaveLength, 2)
			So(voices[0].VoiceID, ShouldEqual, "v1")
		})
	})
}
