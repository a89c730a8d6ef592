package models

import (
	"math"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"go.viam.com/test"
)

func TestCoerce(t *testing.T) {
	p, err := RawPrediction{
		Class:      "Wall",
		Confidence: "0.75",
		X:          10.5,
		Y:          "20",
		Width:      30,
		Height:     nil,
	}.Coerce()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, Prediction{
		Class:      "wall",
		Confidence: 0.75,
		X:          10.5,
		Y:          20,
		Width:      30,
		Height:     0,
	})
}

func TestCoerceLenientFields(t *testing.T) {
	p, err := RawPrediction{
		Class:      map[string]any{"name": "wall"},
		Confidence: "high",
		X:          1, Y: 2, Width: 3, Height: 4,
	}.Coerce()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Class, test.ShouldEqual, "")
	test.That(t, p.Confidence, test.ShouldEqual, 0.0)
}

func TestCoerceBadGeometry(t *testing.T) {
	_, err := RawPrediction{Class: "wall", Confidence: 0.9, X: "left", Y: 1, Width: 1, Height: 1}.Coerce()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "поле x")
}

func TestFloorPlanResultEncoding(t *testing.T) {
	result := NewFloorPlanResult("plan.png", 480, 640, "m/6", nil)
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual,
		`{"meta":{"source":"plan.png","shape":[480,640],"model_id":"m/6"},"walls":[]}`)

	result = NewFloorPlanResult("plan.png", 1, 2, "m", []WallSegment{
		{ID: "w1", Points: []Point{{0, 5}, {10, 5}}, Confidence: 0.5},
	})
	data, err = jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(result.Walls)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `[{"id":"w1","points":[[0,5],[10,5]],"confidence":0.5}]`)
}

func TestCoerceNonFinite(t *testing.T) {
	for _, raw := range []any{"NaN", "Inf", "-Infinity", math.Inf(1), math.NaN()} {
		p, err := RawPrediction{Class: "wall", Confidence: raw, X: 1, Y: 2, Width: 3, Height: 4}.Coerce()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Confidence, test.ShouldEqual, 0.0)

		_, err = RawPrediction{Class: "wall", Confidence: 0.9, X: 1, Y: 2, Width: raw, Height: 4}.Coerce()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "поле width")
	}
}

func TestDecodeExplicitNullGeometry(t *testing.T) {
	var preds []RawPrediction
	err := json.Unmarshal([]byte(`[
		{"class": "wall", "confidence": 0.9, "x": 10, "y": null, "width": 5, "height": 1},
		{"class": "wall", "confidence": 0.9, "x": 10, "width": 5, "height": 1, "detection_id": 7}
	]`), &preds)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, preds, test.ShouldHaveLength, 2)

	_, err = preds[0].Coerce()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "поле y: значение null")

	// отсутствующее поле по-прежнему дает 0
	p, err := preds[1].Coerce()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Y, test.ShouldEqual, 0.0)
	test.That(t, preds[1].DetectionID, test.ShouldEqual, 7.0)
}

func TestDecodeRejectsNonObject(t *testing.T) {
	var pred RawPrediction
	test.That(t, json.Unmarshal([]byte(`42`), &pred), test.ShouldNotBeNil)
}
