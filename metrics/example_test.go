package metrics_test

import (
	"fmt"

	"github.com/YuminosukeSato/regselect/metrics"
)

func ExampleRMSE() {
	actual := []float64{3, 5, 2, 7}
	predicted := []float64{2, 5, 4, 7}
	rmse, err := metrics.RMSE(actual, predicted)
	if err != nil {
		panic(err)
	}
	fmt.Printf("RMSE: %.4f\n", rmse)
	// Output:
	// RMSE: 1.1180
}
