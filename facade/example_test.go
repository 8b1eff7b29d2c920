package facade_test

import (
	"fmt"

	"github.com/momentics/hioload-mem/facade"
)

func ExampleMalloc() {
	b, err := facade.Malloc(24)
	if err != nil {
		panic(err)
	}
	defer facade.Free(b)

	copy(b, "hello")
	fmt.Println(len(b), string(b[:5]), facade.Blksize(b) >= 24)
	// Output: 24 hello true
}

func ExampleIndependentComalloc() {
	blocks, err := facade.IndependentComalloc([]int{16, 64, 8}, nil)
	if err != nil {
		panic(err)
	}
	for _, b := range blocks {
		fmt.Print(len(b), " ")
		facade.Free(b)
	}
	fmt.Println()
	// Output: 16 64 8
}
