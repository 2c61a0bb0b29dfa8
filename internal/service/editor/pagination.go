package editor

import "github.com/mamadbah2/stockboard/internal/domain/models"

// Paginate returns a copy of items[index*size : index*size+size], clipped to
// the list. Out of range pages and non-positive sizes yield an empty page.
func Paginate(items []models.Item, index, size int) []models.Item {
	if index < 0 || size <= 0 || index >= PageCount(len(items), size) {
		return []models.Item{}
	}

	start := index * size
	end := len(items)
	if size < end-start {
		end = start + size
	}

	return append(make([]models.Item, 0, end-start), items[start:end]...)
}

// PageCount is the number of pages needed to show total items.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Page returns one page of the local list. It does not change the stored
// page index or size.
func (vm *ViewModel) Page(index, size int) []models.Item {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return Paginate(vm.items, index, size)
}

// CurrentPage returns the page selected by the stored index and size.
func (vm *ViewModel) CurrentPage() []models.Item {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return Paginate(vm.items, vm.pageIndex, vm.pageSize)
}

// SetPage selects the page to show.
func (vm *ViewModel) SetPage(index int) error {
	if index < 0 {
		return ErrInvalidPage
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	vm.pageIndex = index
	vm.publishLocked(ChangePage, "")
	return nil
}

// SetPageSize changes the number of rows per page and goes back to the first page.
func (vm *ViewModel) SetPageSize(size int) error {
	if size <= 0 {
		return ErrInvalidPage
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.disposed {
		return ErrDisposed
	}

	vm.pageSize = size
	vm.pageIndex = 0
	vm.publishLocked(ChangePage, "")
	return nil
}

// clampPageLocked keeps the stored index on an existing page after the list shrinks.
func (vm *ViewModel) clampPageLocked() {
	if last := PageCount(len(vm.items), vm.pageSize) - 1; vm.pageIndex > last {
		if last < 0 {
			last = 0
		}
		vm.pageIndex = last
	}
}
