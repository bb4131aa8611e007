package httpapi

import "i4.energy/sms-gateway/store"

func (p paginationRequest) toStore() store.Pagination {
	return store.Pagination{Limit: p.Limit, Offset: p.Offset, Reverse: p.Reverse}
}
