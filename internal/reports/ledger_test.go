package reports

import (
	"context"
	"sort"
	"time"
)

type sold struct {
	productID int64
	count     int64
}

type ledgerOrder struct {
	id        string
	createdAt time.Time
	items     []sold
}

// salesLedger aggregates order items in memory with the same ordering
// rules as the SQL reports.
type salesLedger struct {
	products   map[int64]string
	categoryOf map[int64]int64
	categories map[int64]string
	orders     []ledgerOrder
}

func newSalesLedger() *salesLedger {
	return &salesLedger{
		products:   map[int64]string{},
		categoryOf: map[int64]int64{},
		categories: map[int64]string{},
	}
}

func (l *salesLedger) addCategory(id int64, name string) {
	l.categories[id] = name
}

func (l *salesLedger) addProduct(id int64, name string, categoryID int64) {
	l.products[id] = name
	l.categoryOf[id] = categoryID
}

func (l *salesLedger) sell(orderID string, at time.Time, items ...sold) {
	l.orders = append(l.orders, ledgerOrder{id: orderID, createdAt: at, items: items})
}

func (l *salesLedger) RecentOrders(_ context.Context, limit int) ([]RecentOrder, error) {
	sorted := append([]ledgerOrder(nil), l.orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].createdAt.Equal(sorted[j].createdAt) {
			return sorted[i].createdAt.After(sorted[j].createdAt)
		}
		return sorted[i].id < sorted[j].id
	})

	var result []RecentOrder
	for i, o := range sorted {
		if i == limit {
			break
		}
		names := make([]string, 0, len(o.items))
		for _, item := range o.items {
			names = append(names, l.products[item.productID])
		}
		result = append(result, RecentOrder{OrderID: o.id, Products: names, CreatedAt: o.createdAt})
	}
	return result, nil
}

func (l *salesLedger) TopSellingProducts(_ context.Context, limit int) ([]SalesRank, error) {
	return l.rank(limit, func(productID int64) (int64, string) {
		return productID, l.products[productID]
	}), nil
}

func (l *salesLedger) TopSellingCategories(_ context.Context, limit int) ([]SalesRank, error) {
	return l.rank(limit, func(productID int64) (int64, string) {
		id := l.categoryOf[productID]
		return id, l.categories[id]
	}), nil
}

func (l *salesLedger) rank(limit int, group func(int64) (int64, string)) []SalesRank {
	totals := map[int64]*SalesRank{}
	for _, o := range l.orders {
		for _, item := range o.items {
			id, name := group(item.productID)
			if totals[id] == nil {
				totals[id] = &SalesRank{ID: id, Name: name}
			}
			totals[id].Count += item.count
		}
	}

	ranks := make([]SalesRank, 0, len(totals))
	for _, r := range totals {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].ID < ranks[j].ID
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}
