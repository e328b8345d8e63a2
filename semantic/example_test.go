package semantic_test

import (
	"fmt"

	"github.com/jonwraymond/tagsuggest/semantic"
)

func ExamplePreprocessor_Preprocess() {
	pre := semantic.Preprocessor{}

	out := pre.Preprocess("Read this: <b>Breaking!</b> https://example.com/story")
	fmt.Println(out)
	// Output:
	// Read this Breaking
}

func ExampleSharedTerms() {
	shared := semantic.SharedTerms(
		"the new smartphone chip is fast",
		"smartphone and chip reviews",
	)
	fmt.Println(shared)
	// Output:
	// [smartphone chip]
}

func ExampleReason() {
	fmt.Println(semantic.Reason([]string{"smartphone", "chip"}))
	fmt.Println(semantic.Reason(nil))
	// Output:
	// Shared terms: smartphone, chip
	// Semantic similarity to tag description
}
