package internal

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/radovskyb/watcher"
)

const debounceDuration = 500 * time.Millisecond

type notifier struct {
	ctx      context.Context
	out      func()
	delay    time.Duration
	notified bool
	lock     sync.Mutex
}

// notify calls out once per delay window, however often it is called. Once
// ctx is done out is no longer called.
func (n *notifier) notify() {
	n.lock.Lock()
	defer n.lock.Unlock()
	if !n.notified {
		n.notified = true
		go func() {
			time.Sleep(n.delay)
			n.lock.Lock()
			n.notified = false
			n.lock.Unlock()
			if n.ctx.Err() != nil {
				return
			}
			n.out()
		}()
	}
}

// Watch polls paths (directories recursively) and calls onChange, debounced,
// until ctx is done.
func Watch(ctx context.Context, paths []string, interval time.Duration, onChange func()) error {
	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = w.AddRecursive(p)
		} else {
			err = w.Add(p)
		}
		if err != nil {
			return err
		}
	}

	n := &notifier{ctx: ctx, out: onChange, delay: debounceDuration}
	go func() {
		for {
			select {
			case e := <-w.Event:
				color.Printf("<grey>%s %s</>\n", e.Op, e.Path)
				n.notify()
			case err := <-w.Error:
				color.Printf("<red>watch error:</> %s\n", err)
			case <-w.Closed:
				return
			}
		}
	}()

	errs := make(chan error, 1)
	go func() {
		errs <- w.Start(interval)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		w.Close()
		return ctx.Err()
	}
}
