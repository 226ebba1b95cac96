package strat_test

import (
	"fmt"

	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/strat"
)

func ExampleColumn_Decompact() {
	// Without porosity, decompaction leaves every thickness unchanged.
	rock := lithology.Lithology{Density: 2700, SurfacePorosity: 0, PorosityDecay: 1000}

	col := strat.NewColumn(strat.Site{})
	_ = col.AddUnit(strat.Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: rock})
	_ = col.AddUnit(strat.Unit{TopAge: 10, BottomAge: 30, TopDepth: 100, BottomDepth: 300, Lithology: rock})

	records, warnings := col.Decompact()
	for _, r := range records {
		fmt.Printf("%2.0f Ma: %3.0f m, %.0f m/Myr\n", r.Age(), r.TotalDecompactedThickness, r.SedimentRate())
	}
	fmt.Println("warnings:", len(warnings))
	// Output:
	//  0 Ma: 300 m, 10 m/Myr
	// 10 Ma: 200 m, 10 m/Myr
	// warnings: 0
}
