// Package catalog holds the process-wide job and shop catalogs. Catalogs are
// read-only collaborators of the economy engine; a reload swaps the whole
// snapshot atomically so an operation never sees a half-updated table.
package catalog

import (
	"sync/atomic"
)

// PayRange is the inclusive hourly pay range for a job.
type PayRange struct {
	Low  int64
	High int64
}

// JobSpec declares one job catalog entry.
type JobSpec struct {
	Name string `mapstructure:"name" validate:"required"`
	Low  int64  `mapstructure:"low" validate:"gte=0"`
	High int64  `mapstructure:"high" validate:"gtefield=Low"`
}

// ItemSpec declares one shop catalog entry.
type ItemSpec struct {
	Name  string `mapstructure:"name" validate:"required"`
	Price int64  `mapstructure:"price" validate:"gte=0"`
}

type snapshot struct {
	jobOrder  []string
	jobs      map[string]PayRange
	itemOrder []string
	items     map[string]int64
}

// Catalog is safe for concurrent readers with an occasional reload.
type Catalog struct {
	current atomic.Pointer[snapshot]
}

// New builds a catalog from ordered job and item specs.
func New(jobs []JobSpec, items []ItemSpec) *Catalog {
	c := &Catalog{}
	c.Replace(jobs, items)

	return c
}

// Default returns the built-in catalog used when configuration omits one.
func Default() *Catalog {
	return New(
		[]JobSpec{
			{Name: "miner", Low: 50, High: 100},
			{Name: "farmer", Low: 30, High: 70},
			{Name: "programmer", Low: 80, High: 150},
			{Name: "cashier", Low: 20, High: 50},
		},
		[]ItemSpec{
			{Name: "car", Price: 500},
			{Name: "phone", Price: 200},
			{Name: "watch", Price: 100},
		},
	)
}

// Replace atomically swaps in a new catalog snapshot.
func (c *Catalog) Replace(jobs []JobSpec, items []ItemSpec) {
	snap := &snapshot{
		jobOrder:  make([]string, 0, len(jobs)),
		jobs:      make(map[string]PayRange, len(jobs)),
		itemOrder: make([]string, 0, len(items)),
		items:     make(map[string]int64, len(items)),
	}

	for _, job := range jobs {
		if _, dup := snap.jobs[job.Name]; dup {
			continue
		}
		snap.jobOrder = append(snap.jobOrder, job.Name)
		snap.jobs[job.Name] = PayRange{Low: job.Low, High: job.High}
	}

	for _, item := range items {
		if _, dup := snap.items[item.Name]; dup {
			continue
		}
		snap.itemOrder = append(snap.itemOrder, item.Name)
		snap.items[item.Name] = item.Price
	}

	c.current.Store(snap)
}

// Jobs lists job identifiers in catalog order.
func (c *Catalog) Jobs() []string {
	snap := c.current.Load()
	return append([]string(nil), snap.jobOrder...)
}

// JobPay returns the pay range for job and whether the job exists.
func (c *Catalog) JobPay(job string) (PayRange, bool) {
	snap := c.current.Load()
	pay, ok := snap.jobs[job]

	return pay, ok
}

// Item pairs a shop item with its price for ordered listings.
type Item struct {
	Name  string
	Price int64
}

// Items lists the shop in catalog order.
func (c *Catalog) Items() []Item {
	snap := c.current.Load()

	listing := make([]Item, 0, len(snap.itemOrder))
	for _, name := range snap.itemOrder {
		listing = append(listing, Item{Name: name, Price: snap.items[name]})
	}

	return listing
}

// Price returns the catalog price for item and whether the item exists.
func (c *Catalog) Price(item string) (int64, bool) {
	snap := c.current.Load()
	price, ok := snap.items[item]

	return price, ok
}
