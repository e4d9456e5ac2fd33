package ml

// Classifier is a loaded binary model. Predict returns the class index and
// the model's confidence in it.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
	Load(path string) error
}
