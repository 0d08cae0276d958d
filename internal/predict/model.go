package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Predictor consumes a feature vector and returns a predicted EPS. The
// pipeline treats it as pure and stateless.
type Predictor interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
}

// Error reports a prediction failure along with a diagnostic hint the
// dashboard can surface (missing inputs, degenerate output, wrong vector
// width).
type Error struct {
	Hint string
}

func (e *Error) Error() string {
	return "prediction failed: " + e.Hint
}

// LinearModel is a standardized linear regression loaded from a JSON
// artifact: ŷ = intercept + Σ coef_i · (x_i − mean_i) / scale_i.
type LinearModel struct {
	Features     []string  `json:"feature_names"`
	Mean         []float64 `json:"scaler_mean"`
	Scale        []float64 `json:"scaler_scale"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LoadModel reads and validates a model artifact from disk. The artifact is
// read-only and loaded once at process start.
func LoadModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	n := len(m.Coefficients)
	if n == 0 {
		return fmt.Errorf("no coefficients")
	}
	if len(m.Features) != 0 && len(m.Features) != n {
		return fmt.Errorf("feature_names length %d != coefficients length %d", len(m.Features), n)
	}
	if len(m.Mean) != 0 && len(m.Mean) != n {
		return fmt.Errorf("scaler_mean length %d != coefficients length %d", len(m.Mean), n)
	}
	if len(m.Scale) != 0 && len(m.Scale) != n {
		return fmt.Errorf("scaler_scale length %d != coefficients length %d", len(m.Scale), n)
	}
	return nil
}

// NumFeatures returns the vector width the model expects.
func (m *LinearModel) NumFeatures() int { return len(m.Coefficients) }

// Predict evaluates the regression. It rejects vectors of the wrong width
// and degenerate (NaN/Inf) results rather than passing them downstream.
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, &Error{Hint: fmt.Sprintf("expected %d features, got %d", len(m.Coefficients), len(features))}
	}
	y := m.Intercept
	for i, x := range features {
		if len(m.Mean) > 0 {
			x -= m.Mean[i]
		}
		if len(m.Scale) > 0 && m.Scale[i] != 0 {
			x /= m.Scale[i]
		}
		y += m.Coefficients[i] * x
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &Error{Hint: "model returned a degenerate value; inputs may be inconsistent"}
	}
	return y, nil
}
