package lithology_test

import (
	"fmt"

	"github.com/matzehuels/strata/pkg/lithology"
)

func ExampleCompose() {
	mix, err := lithology.Compose([]lithology.Component{
		{Name: "Shale", Fraction: 0.5},
		{Name: "Sandstone", Fraction: 0.5},
	}, lithology.DefaultTable())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("density %.0f, porosity %.2f, decay %.0f\n", mix.Density, mix.SurfacePorosity, mix.PorosityDecay)
	// Output:
	// density 2685, porosity 0.56, decay 2832
}
