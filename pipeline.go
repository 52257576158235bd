package overlap

import "sync"

// task runs fn over data split in contiguous chunks, one per worker, and
// waits for all of them.
func task[T any](workersCount int, data []T, fn func(data T)) {
	if workersCount < 1 {
		workersCount = 1
	}

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		if start >= dataSize {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
