package elcs

import "math"

// MissingValue is the sentinel an Environment/caller uses to mark a missing
// feature in X.
const MissingValue = math.MaxFloat64

// Environment yields training and evaluation instances, delegated behind a
// narrow interface since training-data presentation order is an external
// collaborator, not core. SliceEnvironment is the default in-memory
// implementation; callers needing shuffling, streaming, or epoch-aware
// replay supply their own.
type Environment interface {
	// NewInstance returns the next training instance and whether one was
	// available.
	NewInstance() (x []float64, missing []bool, y float64, ok bool)
	FormatData() FormatData
}

// SliceEnvironment serves instances from in-memory X/y slices, cycling
// deterministically to satisfy LearningIterations draws beyond len(X),
// mirroring skeLCS.py's OfflineEnvironment.
type SliceEnvironment struct {
	X      [][]float64
	Y      []float64
	Format FormatData
	cursor int
}

// NewSliceEnvironment validates X/y and infers FormatData, applying the
// discreteAttributeLimit rule unless specifiedAttributes
// overrides a column's kind.
func NewSliceEnvironment(X [][]float64, y []float64, discreteAttributeLimit int, specifiedAttributes map[int]AttributeKind) (*SliceEnvironment, error) {
	if len(X) == 0 {
		return nil, invalidInput("X must have at least one row")
	}
	if len(X) != len(y) {
		return nil, invalidInput("X and y must have the same number of rows")
	}
	numAttrs := len(X[0])
	for _, row := range X {
		if len(row) != numAttrs {
			return nil, invalidInput("all rows of X must have the same number of columns")
		}
	}

	attrs := make([]AttributeInfo, numAttrs)
	for col := 0; col < numAttrs; col++ {
		values := make([]float64, 0, len(X))
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, row := range X {
			v := row[col]
			if v == MissingValue {
				continue
			}
			values = append(values, v)
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		kind := Discrete
		if override, ok := specifiedAttributes[col]; ok {
			kind = override
		} else {
			kind, _ = classifyAttribute(values, discreteAttributeLimit)
		}
		attrs[col] = AttributeInfo{Kind: kind, Min: minV, Max: maxV}
	}

	phenoKind, labels := classifyAttribute(y, discreteAttributeLimit)
	pheno := Phenotype{Kind: phenoKind}
	if phenoKind == Discrete {
		pheno.Labels = labels
	} else {
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, v := range y {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		pheno.Min, pheno.Max = minV, maxV
	}

	return &SliceEnvironment{
		X: X, Y: y,
		Format: FormatData{NumAttributes: numAttrs, Attributes: attrs, Phenotype: pheno},
	}, nil
}

func (e *SliceEnvironment) NewInstance() ([]float64, []bool, float64, bool) {
	if len(e.X) == 0 {
		return nil, nil, 0, false
	}
	row := e.X[e.cursor]
	y := e.Y[e.cursor]
	e.cursor = (e.cursor + 1) % len(e.X)

	missing := make([]bool, len(row))
	for i, v := range row {
		missing[i] = v == MissingValue
	}
	return row, missing, y, true
}

func (e *SliceEnvironment) FormatData() FormatData { return e.Format }
