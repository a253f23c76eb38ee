package duplex

import "sync"

// deviceRegistry tracks devices held by running sessions in this process.
type deviceRegistry struct {
	mu   sync.Mutex
	held map[DeviceID]struct{}
}

var devices = &deviceRegistry{held: make(map[DeviceID]struct{})}

// acquire marks every id as held, or none of them if one is already taken.
// The returned func releases them.
func (r *deviceRegistry) acquire(ids ...DeviceID) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unique := make([]DeviceID, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.held[id]; ok {
			return nil, ErrDeviceBusy
		}
		dup := false
		for _, u := range unique {
			if u == id {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, id)
		}
	}

	for _, id := range unique {
		r.held[id] = struct{}{}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for _, id := range unique {
				delete(r.held, id)
			}
		})
	}, nil
}
