package collect

// crawl is the state of one same-domain link crawl: HTML pages waiting to
// be fetched and exam documents found so far. URLs are normalized on the
// way in, so a page or document is recorded once however it is linked.
// Both lists keep discovery order.
type crawl struct {
	pages   []string
	fetched int
	limit   int
	seen    map[string]bool

	docs  []string
	found map[string]bool
}

// newCrawl starts a crawl at start that fetches at most limit pages. An
// empty start only collects documents.
func newCrawl(start string, limit int) *crawl {
	c := &crawl{
		limit: limit,
		seen:  make(map[string]bool),
		found: make(map[string]bool),
	}
	if start != "" {
		c.page(start)
	}
	return c
}

// page queues an HTML page. It reports whether the page was new.
func (c *crawl) page(u string) bool {
	u = NormalizeURL(u)
	if c.seen[u] {
		return false
	}
	c.seen[u] = true
	c.pages = append(c.pages, u)
	return true
}

// next returns the next page to fetch, or false once the queue is empty or
// the page budget is spent.
func (c *crawl) next() (string, bool) {
	if c.fetched >= len(c.pages) || c.fetched >= c.limit {
		return "", false
	}
	u := c.pages[c.fetched]
	c.fetched++
	return u, true
}

// doc records an exam document. It reports whether the document was new.
func (c *crawl) doc(u string) bool {
	u = NormalizeURL(u)
	if c.found[u] {
		return false
	}
	c.found[u] = true
	c.docs = append(c.docs, u)
	return true
}

// documents returns the exam documents in discovery order.
func (c *crawl) documents() []string {
	return c.docs
}
