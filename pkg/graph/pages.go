package graph

import "context"

// pagingKeys are removed from the option mapping between pulls; the
// next-page cursor already encodes where the following page starts.
var pagingKeys = [...]string{"offset", "until", "since"}

// Pager is a lazy, forward-only sequence of result pages. Each call to
// Next performs one blocking HTTP exchange; the sequence ends when the
// service stops supplying a next-page cursor. A Pager is not
// restartable and not safe for concurrent use.
//
// Usage follows the scanner idiom:
//
//	pages := client.GetPages("me/feed", graph.Params{"limit": 25})
//	for pages.Next(ctx) {
//		result := pages.Result()
//		// ...
//	}
//	if err := pages.Err(); err != nil {
//		// transport failure ended the sequence
//	}
type Pager struct {
	client  *Client
	method  string
	nextURL string
	params  Params
	current Result
	err     error
}

func (c *Client) newPager(method, target string, params Params) *Pager {
	return &Pager{
		client:  c,
		method:  method,
		nextURL: target,
		params:  params,
	}
}

// Next advances to the following page. It returns false once the
// sequence is exhausted or a transport failure occurred.
func (p *Pager) Next(ctx context.Context) bool {
	if p.err != nil || p.nextURL == "" {
		return false
	}

	result, next, err := p.client.load(ctx, p.method, p.nextURL, p.params)
	if err != nil {
		p.err = err
		return false
	}

	for _, key := range pagingKeys {
		delete(p.params, key)
	}

	p.current = result
	p.nextURL = next
	return true
}

// Result returns the page fetched by the last successful call to Next.
func (p *Pager) Result() Result {
	return p.current
}

// Err returns the transport failure that ended the sequence, if any.
func (p *Pager) Err() error {
	return p.err
}
