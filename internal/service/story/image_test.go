package story

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	storymodel "storyreel/internal/model/story"
)

func TestGenerateSlotImage(t *testing.T) {
	ctx := context.Background()

	Convey("单分镜出图", t, func() {
		Convey("使用已扩写的提示词出图并回写 image_url", func() {
			env := newTestEnv()
			seedStyledProject(env)
			slots := env.seedSlots("proj-1", 2)
			env.slotRepo.Update(ctx, slots[0].ID, map[string]interface{}{"image_prompt": "an expanded scene"})

			url, err := env.svc.GenerateSlotImage(ctx, slots[0].ID, "")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, "https://img.test/1.png")
			So(env.imageGen.prompts[0], ShouldStartWith, "an expanded scene. segment text 0. Style: watercolor.")

			updated, _ := env.slotRepo.FindByID(ctx, slots[0].ID)
			So(updated.ImageURL, ShouldEqual, url)
		})

		Convey("未扩写时退回切分产出的场景描述", func() {
			env := newTestEnv()
			seedStyledProject(env)
			slots := env.seedSlots("proj-1", 1)

			_, err := env.svc.GenerateSlotImage(ctx, slots[0].ID, "")
			So(err, ShouldBeNil)
			So(env.imageGen.prompts[0], ShouldStartWith, "scene description 0. segment text 0.")
		})

		Convey("携带新提示词时先更新再出图，不影响其他分镜", func() {
			env := newTestEnv()
			seedStyledProject(env)
			slots := env.seedSlots("proj-1", 2)

			_, err := env.svc.GenerateSlotImage(ctx, slots[0].ID, "a revised prompt")
			So(err, ShouldBeNil)
			So(env.imageGen.prompts[0], ShouldStartWith, "a revised prompt.")

			first, _ := env.slotRepo.FindByID(ctx, slots[0].ID)
			So(first.ImagePrompt, ShouldEqual, "a revised prompt")

			second, _ := env.slotRepo.FindByID(ctx, slots[1].ID)
			So(second.ImagePrompt, ShouldBeEmpty)
			So(second.ImageURL, ShouldBeEmpty)
		})

		Convey("未确认风格时拒绝出图", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})
			slots := env.seedSlots("proj-1", 1)

			_, err := env.svc.GenerateSlotImage(ctx, slots[0].ID, "")
			So(err, ShouldEqual, ErrStyleNotSet)
		})

		Convey("分镜不存在返回 ErrSlotNotFound", func() {
			env := newTestEnv()
			_, err := env.svc.GenerateSlotImage(ctx, "missing", "")
			So(err, ShouldEqual, ErrSlotNotFound)
		})
	})
}

func TestGenerateAllImages(t *testing.T) {
	ctx := context.Background()

	seedExpandedSlots := func(env *testEnv, count int) []*storymodel.Slot {
		slots := env.seedSlots("proj-1", count)
		for _, slot := range slots {
			env.slotRepo.Update(ctx, slot.ID, map[string]interface{}{"image_prompt": "expanded " + slot.ID})
		}
		return slots
	}

	Convey("批量出图", t, func() {
		Convey("全部成功时逐个回写 image_url", func() {
			env := newTestEnv()
			seedStyledProject(env)
			seedExpandedSlots(env, 3)

			result, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldBeNil)
			So(result.Succeeded, ShouldEqual, 3)
			So(result.Failed, ShouldEqual, 0)

			slots, _ := env.slotRepo.FindByProjectID(ctx, "proj-1")
			for _, slot := range slots {
				So(slot.ImageURL, ShouldNotBeEmpty)
			}
		})

		Convey("单个分镜失败不影响其余分镜", func() {
			env := newTestEnv()
			seedStyledProject(env)
			seedExpandedSlots(env, 3)
			env.imageGen.failOn[2] = true

			result, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldBeNil)
			So(result.Succeeded, ShouldEqual, 2)
			So(result.Failed, ShouldEqual, 1)
			So(result.Errors, ShouldHaveLength, 1)
			So(result.Errors[0].Index, ShouldEqual, 1)

			slots, _ := env.slotRepo.FindByProjectID(ctx, "proj-1")
			So(slots[0].ImageURL, ShouldNotBeEmpty)
			So(slots[1].ImageURL, ShouldBeEmpty)
			So(slots[2].ImageURL, ShouldNotBeEmpty)
		})

		Convey("存在未扩写的分镜时先整体扩写再出图", func() {
			env := newTestEnv()
			seedStyledProject(env)
			env.seedSlots("proj-1", 2)
			env.llm.responses = []string{makePromptResponse(2)}

			result, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldBeNil)
			So(result.Succeeded, ShouldEqual, 2)
			So(env.llm.calls, ShouldHaveLength, 1)

			slots, _ := env.slotRepo.FindByProjectID(ctx, "proj-1")
			So(slots[0].ImagePrompt, ShouldEqual, "expanded prompt 0")
			// 出图使用扩写后的提示词
			So(env.imageGen.prompts[0], ShouldStartWith, "expanded prompt 0.")
		})

		Convey("扩写失败时批量出图整体失败", func() {
			env := newTestEnv()
			seedStyledProject(env)
			env.seedSlots("proj-1", 2)
			env.llm.responses = []string{"not json"}

			_, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldNotBeNil)
			So(env.imageGen.calls, ShouldEqual, 0)
		})

		Convey("未确认风格时拒绝批量出图", func() {
			env := newTestEnv()
			env.seedProject(&storymodel.Project{ID: "proj-1", FinalScript: "script"})
			env.seedSlots("proj-1", 2)

			_, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldEqual, ErrStyleNotSet)
		})

		Convey("没有分镜时拒绝批量出图", func() {
			env := newTestEnv()
			seedStyledProject(env)

			_, err := env.svc.GenerateAllImages(ctx, "proj-1")
			So(err, ShouldEqual, ErrNoSlots)
		})
	})
}
