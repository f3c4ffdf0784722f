package cart

// The functions below never mutate their input; each returns a fresh slice.

func add(items []Item, item Item) []Item {
	out := cloneItems(items)
	for i := range out {
		if out[i].ID == item.ID {
			out[i].Quantity++
			return out
		}
	}
	item.Quantity = 1
	return append(out, item)
}

func increase(items []Item, id string) ([]Item, error) {
	out := cloneItems(items)
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity++
			return out, nil
		}
	}
	return nil, ErrCartItemNotFound
}

func decrease(items []Item, id string, policy DecreasePolicy) ([]Item, error) {
	out := cloneItems(items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if out[i].Quantity > 1 {
			out[i].Quantity--
			return out, nil
		}
		if policy == RemoveAtZero {
			return append(out[:i], out[i+1:]...), nil
		}
		out[i].Quantity = 1
		return out, nil
	}
	return nil, ErrCartItemNotFound
}

func remove(items []Item, id string) ([]Item, error) {
	for i := range items {
		if items[i].ID == id {
			out := make([]Item, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), nil
		}
	}
	return nil, ErrCartItemNotFound
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items), len(items)+1)
	copy(out, items)
	return out
}
