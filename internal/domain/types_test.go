package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymptom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "fever", "fever"},
		{"uppercase", "FEVER", "fever"},
		{"surrounding whitespace", "  skin rash  ", "skin_rash"},
		{"hyphen separator", "skin-rash", "skin_rash"},
		{"mixed separators", "Skin - Rash", "skin_rash"},
		{"collapsed runs", "skin   rash", "skin_rash"},
		{"tab separator", "skin\trash", "skin_rash"},
		{"already canonical", "skin_rash", "skin_rash"},
		{"empty", "", ""},
		{"only separators", " - ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSymptom(tt.input))
		})
	}
}

func TestConfidenceLevelIsValid(t *testing.T) {
	assert.True(t, ConfidenceLow.IsValid())
	assert.True(t, ConfidenceMedium.IsValid())
	assert.True(t, ConfidenceHigh.IsValid())
	assert.False(t, ConfidenceLevel("Certain").IsValid())
}

func TestSeverityGuidance(t *testing.T) {
	assert.Equal(t, "Severe - consult a doctor immediately", SeveritySevere.Guidance())
	assert.Equal(t, "Moderate - consider medical consultation", SeverityModerate.Guidance())
	assert.Equal(t, "Mild - monitor symptoms and take precautions", SeverityMild.Guidance())
	assert.Equal(t, "Unknown severity", SeverityLevel("bogus").Guidance())
}

func TestEngineStateCanServe(t *testing.T) {
	assert.False(t, StateUnloaded.CanServe())
	assert.False(t, StateLoading.CanServe())
	assert.True(t, StateReady.CanServe())
	assert.True(t, StateReloading.CanServe())
}

func TestSymptomValidate(t *testing.T) {
	valid := Symptom{Name: "fever", Weight: 5}
	assert.NoError(t, valid.Validate())

	noName := Symptom{Weight: 5}
	assert.Error(t, noName.Validate())

	negative := Symptom{Name: "fever", Weight: -1}
	assert.Error(t, negative.Validate())
}

func TestDiseaseValidate(t *testing.T) {
	valid := Disease{Name: "Flu", Precautions: []string{"rest", "fluids"}}
	assert.NoError(t, valid.Validate())

	noName := Disease{}
	assert.Error(t, noName.Validate())

	tooMany := Disease{Name: "Flu", Precautions: []string{"a", "b", "c", "d", "e"}}
	assert.Error(t, tooMany.Validate())
}

func TestDiagnosisRequestValidate(t *testing.T) {
	valid := DiagnosisRequest{InitialSymptom: "fever", DaysExperiencing: 3}
	assert.NoError(t, valid.Validate())

	blank := DiagnosisRequest{InitialSymptom: "   "}
	assert.Error(t, blank.Validate())

	negative := DiagnosisRequest{InitialSymptom: "fever", DaysExperiencing: -1}
	assert.Error(t, negative.Validate())

	tooLong := DiagnosisRequest{InitialSymptom: "fever", DaysExperiencing: 366}
	assert.Error(t, tooLong.Validate())
}

func TestDiagnosisRequestClientKey(t *testing.T) {
	explicit := DiagnosisRequest{ClientID: "client-1"}
	assert.Equal(t, "client-1", explicit.ClientKey("10.0.0.1"))

	anonymous := DiagnosisRequest{}
	assert.Equal(t, "10.0.0.1", anonymous.ClientKey("10.0.0.1"))
}
