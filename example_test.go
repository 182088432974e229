package rc_test

import (
	"fmt"

	"github.com/moontrade/rc"
)

type message struct {
	rc.Header
	id int64
}

func (m *message) Finalize() {
	fmt.Printf("message %d finalized\n", m.id)
}

func Example() {
	obj := rc.New[message]()
	obj.id = 42

	h := rc.Adopt(obj)
	fmt.Println("id:", h.Get().id)

	c := h.Clone()
	h.Release() // still one handle left
	c.Release() // last handle gone: finalize + free

	// Output:
	// id: 42
	// message 42 finalized
}

func ExampleNewArray() {
	head := rc.NewArray[message](3)
	elems := rc.Elems(head)
	for i := range elems {
		elems[i].id = int64(i + 1)
	}

	h := rc.Adopt(head)
	h.Release() // one block, every element finalized

	// Output:
	// message 1 finalized
	// message 2 finalized
	// message 3 finalized
}
