package service

import (
	"context"
	"errors"
	"testing"

	"floorplan-analyzer-go/internal/model"
	"floorplan-analyzer-go/pkg/models"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.viam.com/test"
)

type fakeFloorPlanRepo struct {
	plans []*model.FloorPlan
	err   error
}

func (r *fakeFloorPlanRepo) Create(_ context.Context, plan *model.FloorPlan) error {
	if r.err != nil {
		return r.err
	}
	r.plans = append(r.plans, plan)
	return nil
}

func TestResultIndexRecord(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	repo := &fakeFloorPlanRepo{}
	index := NewResultIndex(repo, logger)

	result := models.NewFloorPlanResult("plan.png", 480, 640, "m/6", []models.WallSegment{
		{ID: "w1", Points: []models.Point{{0, 45}, {100, 45}}, Confidence: 0.9},
		{ID: "w2", Points: []models.Point{{10, 10}, {20, 10}, {20, 30}, {10, 30}}, Confidence: 0.5},
	})
	outcome := &ImageOutcome{ResultPath: "out/plan.json", DebugPath: "out/debug/plan_vis.png"}

	err := index.Record(context.Background(), "run-1", result, outcome)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, repo.plans, test.ShouldHaveLength, 1)

	plan := repo.plans[0]
	_, parseErr := uuid.Parse(plan.ID)
	test.That(t, parseErr, test.ShouldBeNil)
	test.That(t, plan.RunID, test.ShouldEqual, "run-1")
	test.That(t, plan.Source, test.ShouldEqual, "plan.png")
	test.That(t, plan.ModelID, test.ShouldEqual, "m/6")
	test.That(t, plan.Height, test.ShouldEqual, 480)
	test.That(t, plan.Width, test.ShouldEqual, 640)
	test.That(t, plan.WallCount, test.ShouldEqual, 2)
	test.That(t, plan.ResultPath, test.ShouldEqual, "out/plan.json")
	test.That(t, plan.DebugPath, test.ShouldEqual, "out/debug/plan_vis.png")

	test.That(t, plan.Walls, test.ShouldHaveLength, 2)
	test.That(t, plan.Walls[0].WallID, test.ShouldEqual, "w1")
	test.That(t, plan.Walls[0].Points, test.ShouldEqual, "[[0,45],[100,45]]")
	test.That(t, plan.Walls[1].Position, test.ShouldEqual, 1)
	test.That(t, plan.Walls[1].FloorPlanID, test.ShouldEqual, plan.ID)
	test.That(t, plan.Walls[1].Confidence, test.ShouldEqual, 0.5)
}

func TestResultIndexRecordError(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	repo := &fakeFloorPlanRepo{err: errors.New("connection reset")}
	index := NewResultIndex(repo, logger)

	err := index.Record(context.Background(), "run-1", models.NewFloorPlanResult("a.png", 1, 1, "m", nil), &ImageOutcome{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "a.png")
	test.That(t, errors.Is(err, repo.err), test.ShouldBeTrue)
}
