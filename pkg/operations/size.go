package operations

import "atelier/client"

// EstimatePullSize sums the sizes in a task's attachment manifest. Files the
// server reported without a size are counted separately so callers can flag
// the estimate as partial.
func EstimatePullSize(files []client.TaskFile) (totalBytes int64, unsized int) {
	for _, file := range files {
		if file.Size > 0 {
			totalBytes += file.Size
		} else {
			unsized++
		}
	}
	return totalBytes, unsized
}
