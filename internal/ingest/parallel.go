package ingest

import (
	"fmt"
	"sync"

	"github.com/agentic-research/jsontotables/internal/errs"
	"github.com/agentic-research/jsontotables/internal/model"
	"github.com/agentic-research/jsontotables/internal/sink"
	"github.com/agentic-research/jsontotables/internal/tokenizer"
)

type parallelMsg struct {
	fileIdx int
	loc     model.TableLocation
	rec     *model.TableRecord
	eof     bool
	err     error
}

// RunParallel implements spec §5's optional parallel extension: up to
// parallelism input files are tokenized concurrently, each by its own
// NestedObjectHandler, all feeding one bounded channel that a single
// coordinator goroutine drains — remapping ids and driving the sink
// exactly as the single-threaded Run does, just fed from many producers
// instead of one. Per-file emission order is preserved (each producer
// sends in document order); global id allocation is serialized through
// the coordinator, so ids from different files interleave but stay
// per-table dense.
func RunParallel(inputs []Input, strict bool, s sink.Sink, onSuccess OnSuccess, parallelism int) error {
	if parallelism <= 0 {
		parallelism = 1
	}

	msgs := make(chan parallelMsg, parallelism*64)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				produceFile(idx, inputs[idx].Data, msgs)
			}
		}()
	}

	go func() {
		for i := range inputs {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(msgs)
	}()

	remapper := NewRemapper(strict)
	sessions := make(map[int]*Session)
	counts := make(map[int]int)
	var firstErr error

	for msg := range msgs {
		if firstErr != nil {
			continue // keep draining so producer goroutines can finish and exit
		}

		session, ok := sessions[msg.fileIdx]
		if !ok {
			session = remapper.OpenSession()
			sessions[msg.fileIdx] = session
		}

		switch {
		case msg.err != nil:
			firstErr = msg.err
		case msg.eof:
			session.Close()
			delete(sessions, msg.fileIdx)
			onSuccess(inputs[msg.fileIdx].Name, counts[msg.fileIdx])
		default:
			globalLoc, err := session.Remap(msg.loc)
			if err != nil {
				firstErr = err
				break
			}
			if err := s.Write(globalLoc, msg.rec); err != nil {
				firstErr = err
				break
			}
			counts[msg.fileIdx]++
		}
	}

	if firstErr != nil {
		return firstErr
	}
	if err := remapper.Close(); err != nil {
		return err
	}
	return s.Close()
}

func produceFile(fileIdx int, data []byte, out chan<- parallelMsg) {
	consumer := func(loc model.TableLocation, rec *model.TableRecord) {
		out <- parallelMsg{fileIdx: fileIdx, loc: loc, rec: rec}
	}
	handler := NewNestedObjectHandler(consumer)
	adapter := tokenizer.NewAdapter(handler)
	if err := adapter.Parse(data); err != nil {
		out <- parallelMsg{fileIdx: fileIdx, err: fmt.Errorf("%w: parsing file %d: %v", errs.ErrParse, fileIdx, err)}
		return
	}
	out <- parallelMsg{fileIdx: fileIdx, eof: true}
}
