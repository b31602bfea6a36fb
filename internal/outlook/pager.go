package outlook

import "context"

// MessagePager is a lazy, finite, forward-only cursor over a paged
// message list. Each Next call serves from the current page buffer and
// fetches the following page only when the buffer runs out. The cursor
// is not restartable; obtain a fresh one from MessageService.List.
// Ordering across pages is whatever the remote store returns; the
// cursor does not re-sort or deduplicate.
//
//	pager := account.Messages().List(outlook.Inbox)
//	for pager.Next(ctx) {
//		fmt.Println(pager.Message().Subject)
//	}
//	if err := pager.Err(); err != nil {
//		return err
//	}
type MessagePager struct {
	svc    *MessageService
	folder FolderRef

	page      int
	buf       []Message
	idx       int
	current   Message
	exhausted bool
	err       error
}

// Next advances the cursor, fetching the next page on demand. It
// returns false when the sequence is exhausted or a fetch failed; Err
// distinguishes the two.
func (p *MessagePager) Next(ctx context.Context) bool {
	if p.err != nil || p.exhausted && p.idx >= len(p.buf) {
		return false
	}

	if p.idx >= len(p.buf) {
		var (
			messages []Message
			err      error
		)
		if p.folder != nil {
			messages, err = p.svc.FromFolder(ctx, p.folder, p.page)
		} else {
			messages, err = p.svc.All(ctx, p.page)
		}
		if err != nil {
			p.err = err
			return false
		}
		// An empty page means the previous page was the last one.
		if len(messages) == 0 {
			p.exhausted = true
			return false
		}
		p.page++
		p.buf = messages
		p.idx = 0
	}

	p.current = p.buf[p.idx]
	p.idx++
	return true
}

// Message returns the message produced by the last successful Next
// call.
func (p *MessagePager) Message() Message {
	return p.current
}

// Err returns the first error encountered while paging, nil when the
// cursor simply reached the end.
func (p *MessagePager) Err() error {
	return p.err
}
