package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fredboard/pkg/domain/types"
)

func TestChartType_IsValid(t *testing.T) {
	tests := []struct {
		name string
		typ  types.ChartType
		want bool
	}{
		{name: "area", typ: types.ChartTypeArea, want: true},
		{name: "line", typ: types.ChartTypeLine, want: true},
		{name: "bar", typ: types.ChartTypeBar, want: true},
		{name: "pie is not supported", typ: types.ChartType("pie"), want: false},
		{name: "empty", typ: types.ChartType(""), want: false},
		{name: "case sensitive", typ: types.ChartType("Line"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.typ.IsValid()).Equal(tt.want)
		})
	}
}

func TestChartType_Renderable(t *testing.T) {
	gt.Value(t, types.ChartTypeLine.Renderable()).Equal(types.ChartTypeLine)
	gt.Value(t, types.ChartTypeBar.Renderable()).Equal(types.ChartTypeBar)
	gt.Value(t, types.ChartType("radar").Renderable()).Equal(types.ChartTypeArea)
	gt.Value(t, types.ChartType("").Renderable()).Equal(types.DefaultChartType)
}

func TestParseChartType(t *testing.T) {
	got, err := types.ParseChartType("bar")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.ChartTypeBar)

	_, err = types.ParseChartType("treemap")
	gt.Error(t, err)
}

func TestAllChartTypes(t *testing.T) {
	all := types.AllChartTypes()
	gt.Array(t, all).Length(3)
	for _, typ := range all {
		gt.B(t, typ.IsValid()).True()
	}
}

func TestLineStyle_Renderable(t *testing.T) {
	tests := []struct {
		name  string
		style types.LineStyle
		want  types.LineStyle
	}{
		{name: "monotone", style: types.LineStyleMonotone, want: types.LineStyleMonotone},
		{name: "linear", style: types.LineStyleLinear, want: types.LineStyleLinear},
		{name: "step", style: types.LineStyleStep, want: types.LineStyleStep},
		{name: "absent", style: "", want: types.LineStyleMonotone},
		{name: "unknown", style: "basis", want: types.LineStyleMonotone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.style.Renderable()).Equal(tt.want)
		})
	}
}

func TestParseLineStyle(t *testing.T) {
	got, err := types.ParseLineStyle("step")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.LineStyleStep)

	_, err = types.ParseLineStyle("cardinal")
	gt.Error(t, err)
}
