package service

// Len reports the number of live cache entries.
func (vc *ValuationCache) Len() int {
	return vc.itemCount()
}
