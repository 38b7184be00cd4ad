// Package linearsvm is a pure-Go linear SVM and logistic regression library
// that follows the LIBLINEAR training and prediction contract.
//
// The library fits dense feature matrices with one of eleven LIBLINEAR
// solvers, predicts labels with their decision values, and stores trained
// models under unique handles.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/linearsvm/store"
//	    "github.com/YuminosukeSato/linearsvm/svm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{2, 1, 1, 2, -2, -1, -1, -2})
//	    y := mat.NewDense(4, 1, []float64{1, 1, -1, -1})
//
//	    clf := svm.NewLinearSVM()
//	    if err := clf.Fit(X, y, svm.DefaultConfig()); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    label, decision, err := clf.Predict([]float64{3, 3})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(label, decision)
//
//	    st, _ := store.NewFileStore("models")
//	    h, err := clf.Save(context.Background(), st)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("saved as", h)
//	}
//
// # Packages
//
//   - svm: LinearSVM (Fit, Predict, PredictBatch, Score, Save, Load) and Config
//   - liblinear: problem/model types, the solver family, text model format
//   - sparse: dense rows to 1-based sparse rows terminated by index -1
//   - store: handle-addressed model stores (file, SQLite, LRU cache) and the
//     checksummed, compressed envelope codec
//   - metrics: accuracy, log loss, MSE, RMSE, MAE, R²
//   - core/model: estimator interfaces and fitted-state bookkeeping
//   - core/parallel: range-partitioned worker fan-out
//   - pkg/errors: error kinds (InvalidInput, TrainingFailure, NotTrained,
//     PersistenceFailure) and warnings
//   - pkg/log: zerolog-backed structured logging
//
// # Errors
//
// Every error can be classified with errors.Is against the kinds in
// pkg/errors:
//
//	if errors.Is(err, perrors.ErrNotTrained) {
//	    // Fit or Load first
//	}
//
// # License
//
// linearsvm is released under the MIT License.
package linearsvm
