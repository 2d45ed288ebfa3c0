package domain

// Source names which section of a PredictionResult a stage field reads.
type Source int

const (
	SourceNumeric Source = iota
	SourceText
)

// StageField is one rendered (label, value) pair.
type StageField struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Stage is one cultivation phase with its defined fields, in display order.
type Stage struct {
	Name   string       `json:"stage" yaml:"stage"`
	Fields []StageField `json:"fields" yaml:"fields"`
}

// FertilizerBlock is the TSP/MOP/Urea dosage sub-result. A nutrient that the
// response did not carry is nil.
type FertilizerBlock struct {
	TSP  any `json:"tsp_kg" yaml:"tsp_kg"`
	MOP  any `json:"mop_kg" yaml:"mop_kg"`
	Urea any `json:"urea_kg" yaml:"urea_kg"`
}

// StageView is the read-only display projection of a PredictionResult.
type StageView struct {
	Stages     []Stage          `json:"stages" yaml:"stages"`
	Fertilizer *FertilizerBlock `json:"fertilizer,omitempty" yaml:"fertilizer,omitempty"`
}

type fieldSpec struct {
	source Source
	key    string
	label  string
}

type stageSpec struct {
	name   string
	fields []fieldSpec
}

// humidityTargetKey is the numeric key whose label differs from the key and
// which falls back to the submitted humidity.
const humidityTargetKey = "Humidity_%"

func num(key string) fieldSpec  { return fieldSpec{SourceNumeric, key, key} }
func text(key string) fieldSpec { return fieldSpec{SourceText, key, key} }

// stageLayout fixes stage order and field order; nothing here is derived
// from the response.
var stageLayout = []stageSpec{
	{"Land Preparation", []fieldSpec{
		num("PloughDepth_cm"),
		text("PloughMethod"),
		num("SoilAdjustment_kgLime"),
		text("IrrigationAdvice"),
	}},
	{"Seed & Planting", []fieldSpec{
		num("SeedAmount_kg"),
		num("PlantSpacing_cm"),
	}},
	{"Basal Fertilization", []fieldSpec{
		num("Fertilizer_Basal_Urea_kg"),
		num("Fertilizer_Basal_TSP_kg"),
		num("Fertilizer_Basal_MOP_kg"),
	}},
	{"Water & Growth Management", []fieldSpec{
		text("WaterManagementAdvice_Stage4"),
		text("TillerIncreaseTip"),
		num("Fertilizer_2ndDose_Urea_kg"),
		num("Fertilizer_2ndDose_TSP_kg"),
		num("Fertilizer_2ndDose_MOP_kg"),
		text("WaterControlAdvice_Stage5"),
		text("WaterControlAdvice_Stage6"),
		text("PesticideSuggestion"),
		{SourceNumeric, humidityTargetKey, "HumidityTarget_%"},
	}},
	{"Harvesting & Post-harvest", []fieldSpec{
		text("WaterLevelAdvice_Stage7"),
		num("PredictedYield_kg_ha"),
		text("HarvestingDate"),
		num("FinalMoisture_%"),
		text("PostHarvestAdvice"),
	}},
}

// StageNames returns the fixed stage names in display order.
func StageNames() []string {
	names := make([]string, len(stageLayout))
	for i, s := range stageLayout {
		names[i] = s.name
	}
	return names
}

// Project builds the StageView for result. req is the submission that
// produced it; when non-nil its humidity stands in for a missing humidity
// target. Every stage is emitted, possibly with no fields.
func Project(result PredictionResult, req *PredictionRequest) StageView {
	view := StageView{Stages: make([]Stage, 0, len(stageLayout))}
	for _, spec := range stageLayout {
		stage := Stage{Name: spec.name, Fields: []StageField{}}
		for _, f := range spec.fields {
			m := result.Numeric
			if f.source == SourceText {
				m = result.Text
			}
			v, ok := m.Lookup(f.key)
			if !ok && f.key == humidityTargetKey && req != nil {
				v, ok = req.Humidity, true
			}
			if !ok {
				continue
			}
			stage.Fields = append(stage.Fields, StageField{Label: f.label, Value: v})
		}
		view.Stages = append(view.Stages, stage)
	}

	if result.Fertilizer.Present() {
		block := &FertilizerBlock{}
		block.TSP, _ = result.Fertilizer.Lookup("TSP_kg")
		block.MOP, _ = result.Fertilizer.Lookup("MOP_kg")
		block.Urea, _ = result.Fertilizer.Lookup("Urea_kg")
		view.Fertilizer = block
	}
	return view
}
