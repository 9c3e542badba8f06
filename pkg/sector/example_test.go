package sector_test

import (
	"fmt"

	"github.com/matzehuels/sectorlock/pkg/sector"
)

func ExampleBoundaryFor() {
	for l := sector.Level1; l <= sector.Level4; l++ {
		b := sector.BoundaryFor(l)
		if b == nil {
			fmt.Printf("level %d: unlocked\n", l)
			continue
		}
		fmt.Printf("level %d: side %.4f, ring %.4f\n", l, b.Side(), b.Margin)
	}
	// Output:
	// level 1: side 81.8535, ring 9.0732
	// level 2: side 58.3095, ring 20.8452
	// level 3: side 10.0000, ring 45.0000
	// level 4: unlocked
}
