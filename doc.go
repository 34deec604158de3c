// Package fixedseq implements a capacity bounded sequence with external iteration.
//
// The storage of a Sequence is acquired up front for all of its slots,
// while elements are constructed and destroyed one by one at the back of the Sequence.
// Mutations are serialised, and every mutation is broadcast to goroutines waiting in WaitUntilNonEmpty.
//
//	seq, err := fixedseq.New[int](3)
//	if err != nil {
//		return err
//	}
//	defer seq.Close()
//
//	_ = seq.PushBack(10)
//	_ = seq.PushBack(20)
//	_ = seq.PopBack()
//
//	it := seq.Iterator()
//	for it.First(); !it.IsDone(); it.Next() {
//		v, _ := it.Current()
//		fmt.Println(v)
//	}
package fixedseq
