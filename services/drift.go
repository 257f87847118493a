package services

import (
	"math"
	"sort"
	"strconv"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

const (
	// driftThreshold marks a column as drifted. PSI above 0.2 is the
	// conventional "significant shift" cutoff; the same cutoff is applied
	// to the total-variation distance of categorical columns.
	driftThreshold = 0.2

	psiBins    = 10
	psiEpsilon = 1e-4
)

// DriftMonitor compares the current scored batch against the reference
// distribution and produces the drift report the alerting layer and the
// metrics store consume.
type DriftMonitor struct {
	numericFeatures     []string
	categoricalFeatures []string
	logger              *utils.Logger
}

// NewDriftMonitor creates a DriftMonitor over the rent model's feature set.
func NewDriftMonitor(logger *utils.Logger) *DriftMonitor {
	return &DriftMonitor{
		numericFeatures:     []string{"latitude", "longitude", "bedrooms", "bathrooms", "yearBuilt", "lotSize"},
		categoricalFeatures: []string{"station", "propertyType"},
		logger:              logger,
	}
}

// Compare computes drift of current against reference. Feature columns
// missing from either frame are skipped rather than treated as drifted.
func (m *DriftMonitor) Compare(current, reference *dataset.Frame) *models.DriftReport {
	report := &models.DriftReport{
		ColumnScores: make(map[string]float64),
	}

	drifted := 0
	for _, col := range m.numericFeatures {
		cur, _ := current.Floats(col)
		ref, _ := reference.Floats(col)
		if len(cur) == 0 || len(ref) == 0 {
			continue
		}
		score := populationStabilityIndex(ref, cur)
		report.ColumnScores[col] = score
		if score > driftThreshold {
			drifted++
			m.logger.Warn("[drift] Column %s drifted: PSI %.4f", col, score)
		}
	}
	for _, col := range m.categoricalFeatures {
		cur := current.Strings(col)
		ref := reference.Strings(col)
		if len(cur) == 0 || len(ref) == 0 {
			continue
		}
		score := totalVariation(ref, cur)
		report.ColumnScores[col] = score
		if score > driftThreshold {
			drifted++
			m.logger.Warn("[drift] Column %s drifted: TV distance %.4f", col, score)
		}
	}
	report.NumDriftedColumns = drifted

	if cur, _ := current.Floats("predicted_price"); len(cur) > 0 {
		if ref, _ := reference.Floats("predicted_price"); len(ref) > 0 {
			report.PredictionDrift = populationStabilityIndex(ref, cur)
		}
	}
	if cur, _ := current.Floats("price"); len(cur) > 0 {
		if ref, _ := reference.Floats("price"); len(ref) > 0 {
			report.TargetDrift = populationStabilityIndex(ref, cur)
		}
	}

	if cells := current.Len() * len(current.Columns()); cells > 0 {
		report.ShareMissingValues = float64(current.MissingCells()) / float64(cells)
	}

	report.PredictionMAE, report.PredictionRMSE = regressionQuality(current)

	m.logger.Info("[drift] %d drifted columns, prediction drift %.4f, missing share %.4f",
		report.NumDriftedColumns, report.PredictionDrift, report.ShareMissingValues)
	return report
}

// regressionQuality computes MAE and RMSE of predictions against actual
// prices where both are present.
func regressionQuality(f *dataset.Frame) (mae, rmse float64) {
	if !f.HasColumn("price") || !f.HasColumn("predicted_price") {
		return 0, 0
	}

	var absSum, sqSum float64
	n := 0
	for i := 0; i < f.Len(); i++ {
		actual, okA := floatCell(f, i, "price")
		predicted, okP := floatCell(f, i, "predicted_price")
		if !okA || !okP {
			continue
		}
		diff := actual - predicted
		absSum += math.Abs(diff)
		sqSum += diff * diff
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return absSum / float64(n), math.Sqrt(sqSum / float64(n))
}

func floatCell(f *dataset.Frame, row int, col string) (float64, bool) {
	s, ok := f.Value(row, col)
	if !ok || s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// populationStabilityIndex bins both samples by the reference deciles and
// sums (actual% - expected%) * ln(actual% / expected%) over the bins.
func populationStabilityIndex(reference, current []float64) float64 {
	edges := decileEdges(reference)

	refProp := binProportions(reference, edges)
	curProp := binProportions(current, edges)

	psi := 0.0
	for i := range refProp {
		e := math.Max(refProp[i], psiEpsilon)
		a := math.Max(curProp[i], psiEpsilon)
		psi += (a - e) * math.Log(a/e)
	}
	return psi
}

// decileEdges returns the interior bin edges of the reference sample.
func decileEdges(sample []float64) []float64 {
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, psiBins-1)
	for i := 1; i < psiBins; i++ {
		idx := i * len(sorted) / psiBins
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		edges = append(edges, sorted[idx])
	}
	return edges
}

func binProportions(sample []float64, edges []float64) []float64 {
	counts := make([]float64, len(edges)+1)
	for _, v := range sample {
		bin := sort.SearchFloat64s(edges, v)
		counts[bin]++
	}
	for i := range counts {
		counts[i] /= float64(len(sample))
	}
	return counts
}

// totalVariation is half the L1 distance between the two samples' category
// frequency distributions.
func totalVariation(reference, current []string) float64 {
	refFreq := frequencies(reference)
	curFreq := frequencies(current)

	levels := make(map[string]struct{})
	for l := range refFreq {
		levels[l] = struct{}{}
	}
	for l := range curFreq {
		levels[l] = struct{}{}
	}

	sum := 0.0
	for l := range levels {
		sum += math.Abs(refFreq[l] - curFreq[l])
	}
	return sum / 2
}

func frequencies(sample []string) map[string]float64 {
	freq := make(map[string]float64)
	for _, s := range sample {
		freq[s]++
	}
	for k := range freq {
		freq[k] /= float64(len(sample))
	}
	return freq
}
