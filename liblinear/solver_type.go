package liblinear

import (
	"strconv"
	"strings"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// SolverType selects the loss, regularizer and optimization method.
// Values are the native LIBLINEAR constants.
type SolverType int

// Native LIBLINEAR solver constants. 8–10 are unused upstream.
const (
	L2R_LR              SolverType = 0
	L2R_L2LOSS_SVC_DUAL SolverType = 1
	L2R_L2LOSS_SVC      SolverType = 2
	L2R_L1LOSS_SVC_DUAL SolverType = 3
	MCSVM_CS            SolverType = 4
	L1R_L2LOSS_SVC      SolverType = 5
	L1R_LR              SolverType = 6
	L2R_LR_DUAL         SolverType = 7
	L2R_L2LOSS_SVR      SolverType = 11
	L2R_L2LOSS_SVR_DUAL SolverType = 12
	L2R_L1LOSS_SVR_DUAL SolverType = 13
)

var solverNames = map[SolverType]string{
	L2R_LR:              "L2R_LR",
	L2R_L2LOSS_SVC_DUAL: "L2R_L2LOSS_SVC_DUAL",
	L2R_L2LOSS_SVC:      "L2R_L2LOSS_SVC",
	L2R_L1LOSS_SVC_DUAL: "L2R_L1LOSS_SVC_DUAL",
	MCSVM_CS:            "MCSVM_CS",
	L1R_L2LOSS_SVC:      "L1R_L2LOSS_SVC",
	L1R_LR:              "L1R_LR",
	L2R_LR_DUAL:         "L2R_LR_DUAL",
	L2R_L2LOSS_SVR:      "L2R_L2LOSS_SVR",
	L2R_L2LOSS_SVR_DUAL: "L2R_L2LOSS_SVR_DUAL",
	L2R_L1LOSS_SVR_DUAL: "L2R_L1LOSS_SVR_DUAL",
}

// SolverTypes returns every supported solver in native order.
func SolverTypes() []SolverType {
	return []SolverType{
		L2R_LR, L2R_L2LOSS_SVC_DUAL, L2R_L2LOSS_SVC, L2R_L1LOSS_SVC_DUAL,
		MCSVM_CS, L1R_L2LOSS_SVC, L1R_LR, L2R_LR_DUAL,
		L2R_L2LOSS_SVR, L2R_L2LOSS_SVR_DUAL, L2R_L1LOSS_SVR_DUAL,
	}
}

// String returns the LIBLINEAR name, e.g. "L2R_L2LOSS_SVC_DUAL".
func (s SolverType) String() string {
	if name, ok := solverNames[s]; ok {
		return name
	}
	return "SolverType(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is one of the eleven supported solvers.
func (s SolverType) Valid() bool {
	_, ok := solverNames[s]
	return ok
}

// IsLogisticRegression reports whether the model yields probability estimates.
func (s SolverType) IsLogisticRegression() bool {
	return s == L2R_LR || s == L1R_LR || s == L2R_LR_DUAL
}

// IsRegression reports whether s is a support vector regression solver.
func (s SolverType) IsRegression() bool {
	return s == L2R_L2LOSS_SVR || s == L2R_L2LOSS_SVR_DUAL || s == L2R_L1LOSS_SVR_DUAL
}

// ParseSolverType accepts a LIBLINEAR name (case-insensitive) or its
// native number.
func ParseSolverType(s string) (SolverType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if st := SolverType(n); st.Valid() {
			return st, nil
		}
		return 0, perrors.NewValidationError("solver", "unknown solver number", s)
	}
	upper := strings.ToUpper(s)
	for st, name := range solverNames {
		if name == upper {
			return st, nil
		}
	}
	return 0, perrors.NewValidationError("solver", "unknown solver name", s)
}
