package pool_test

import (
	"fmt"

	"github.com/jonwraymond/tagsuggest/pool"
)

func ExampleEncodeToken() {
	token := pool.EncodeToken("9b2f", 10)
	fmt.Println(token)

	key, pos, ok := pool.DecodeToken(token)
	fmt.Println(key, pos, ok)
	// Output:
	// OWIyZjoxMA
	// 9b2f 10 true
}

func ExampleDecodeToken() {
	// Corrupt tokens decode to ok=false, never an error.
	_, _, ok := pool.DecodeToken("not a token")
	fmt.Println(ok)
	// Output:
	// false
}
