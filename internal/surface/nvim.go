package surface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"

	"craftbench/internal/bench"
)

// bufEnterMethod is the notification Neovim sends when a buffer is entered.
const bufEnterMethod = "craftbench_buf_enter"

// Nvim shows diffs and resources in a running Neovim instance.
type Nvim struct {
	v *nvim.Nvim

	mu        sync.Mutex
	listeners []func(string)
}

var _ bench.EditingSurface = (*Nvim)(nil)

// DialNvim connects to the Neovim instance listening at addr, or at
// $NVIM_LISTEN_ADDRESS when addr is empty.
func DialNvim(addr string) (*Nvim, error) {
	if addr == "" {
		addr = os.Getenv("NVIM_LISTEN_ADDRESS")
	}
	if addr == "" {
		return nil, errors.New("no neovim address configured and NVIM_LISTEN_ADDRESS is not set")
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to neovim at %s: %w", addr, err)
	}

	n, err := newNvim(v)
	if err != nil {
		v.Close()
		return nil, err
	}
	return n, nil
}

// newNvim wraps a connected client and subscribes to buffer changes.
func newNvim(v *nvim.Nvim) (*Nvim, error) {
	n := &Nvim{v: v}

	if err := v.RegisterHandler(bufEnterMethod, n.bufEnter); err != nil {
		return nil, fmt.Errorf("registering buffer handler: %w", err)
	}

	autocmd := fmt.Sprintf(
		"augroup craftbench | autocmd! | autocmd BufEnter * call rpcnotify(%d, '%s', expand('<afile>:p')) | augroup END",
		v.ChannelID(), bufEnterMethod)
	if err := v.Command(autocmd); err != nil {
		return nil, fmt.Errorf("installing autocommand: %w", err)
	}
	return n, nil
}

// ShowDiff opens leftID and rightID side by side in diff mode in a new tab.
func (n *Nvim) ShowDiff(_ context.Context, leftID, rightID, title string) error {
	b := n.v.NewBatch()
	b.Command("execute 'tabnew ' . fnameescape(" + vimString(leftID) + ")")
	b.Command("execute 'vert diffsplit ' . fnameescape(" + vimString(rightID) + ")")
	b.Command("let t:craftbench_title = " + vimString(title))
	b.Command("echo " + vimString(title))
	if err := b.Execute(); err != nil {
		return fmt.Errorf("opening diff: %w", err)
	}
	return nil
}

func (n *Nvim) ShowResource(_ context.Context, id string) error {
	if err := n.v.Command("execute 'edit ' . fnameescape(" + vimString(id) + ")"); err != nil {
		return fmt.Errorf("opening %s: %w", id, err)
	}
	return nil
}

// CloseActiveView closes the current tab, or the current window when it is
// the last tab.
func (n *Nvim) CloseActiveView(context.Context) error {
	if err := n.v.Command("if tabpagenr('$') > 1 | tabclose | else | close | endif"); err != nil {
		return fmt.Errorf("closing view: %w", err)
	}
	return nil
}

// SaveResource writes the buffer holding id when it has unsaved changes.
func (n *Nvim) SaveResource(_ context.Context, id string) error {
	var buf int
	if err := n.v.Call("bufnr", &buf, id); err != nil {
		return fmt.Errorf("finding buffer for %s: %w", id, err)
	}
	if buf <= 0 {
		return nil
	}
	var modified int
	if err := n.v.Call("getbufvar", &modified, buf, "&modified"); err != nil {
		return fmt.Errorf("checking buffer for %s: %w", id, err)
	}
	if modified == 0 {
		return nil
	}

	var lines []string
	if err := n.v.Call("getbufline", &lines, buf, 1, "$"); err != nil {
		return fmt.Errorf("reading buffer for %s: %w", id, err)
	}
	var rc int
	if err := n.v.Call("writefile", &rc, lines, id); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	if rc != 0 {
		return fmt.Errorf("writing %s: writefile returned %d", id, rc)
	}
	return n.v.Call("setbufvar", &rc, buf, "&modified", 0)
}

func (n *Nvim) ActiveResource(context.Context) (string, error) {
	buf, err := n.v.CurrentBuffer()
	if err != nil {
		return "", fmt.Errorf("getting current buffer: %w", err)
	}
	name, err := n.v.BufferName(buf)
	if err != nil {
		return "", fmt.Errorf("getting buffer name: %w", err)
	}
	return name, nil
}

func (n *Nvim) OnActiveResourceChanged(fn func(id string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Close removes the autocommand and disconnects.
func (n *Nvim) Close() error {
	// The instance may already be gone.
	_ = n.v.Command("silent! augroup! craftbench")
	return n.v.Close()
}

func (n *Nvim) bufEnter(path string) {
	n.mu.Lock()
	listeners := append([]func(string){}, n.listeners...)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
}

// vimString quotes s as a single-quoted Vim string literal.
func vimString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
