package sm3_test

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/opentoys/gosm3/crypto/sm3"
)

func ExampleSum() {
	sum := sm3.Sum([]byte("hello world\n"))
	fmt.Println(sum)
	// Output: 4cc2036b86431b5d2685a04d289dfe140a36baa854b01cb39fcd6009638e4e7a
}

func ExampleNew() {
	d := sm3.New()
	d.Write([]byte("hello "))
	d.Write([]byte("world\n"))
	fmt.Println(d.Finalize())
	// Output: 4cc2036b86431b5d2685a04d289dfe140a36baa854b01cb39fcd6009638e4e7a
}

func ExampleNew_file() {
	f, err := os.Open("file.txt")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	d := sm3.New()
	if _, err := io.Copy(d, f); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%x", d.Sum(nil))
}
