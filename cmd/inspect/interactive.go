package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/slotforge/containers/darray"
	"github.com/slotforge/containers/stack"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	slotFilledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E8B57"))

	slotEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	stk *stack.Stack
	arr *darray.Array

	kind     string
	elemSize uint64
	result   string
	errMsg   string
	input    textinput.Model
}

func newInspectModel(kind string, elemSize, alignment, capacity uint64) (*inspectModel, error) {
	m := &inspectModel{kind: kind, elemSize: elemSize}

	switch kind {
	case "stack":
		s, err := stack.New(elemSize, alignment, capacity)
		if err != nil {
			return nil, err
		}
		m.stk = s
	case "darray":
		d, err := darray.New(elemSize, alignment, capacity)
		if err != nil {
			return nil, err
		}
		m.arr = d
	}

	ti := textinput.New()
	ti.Placeholder = "command"
	ti.Prompt = "> "
	ti.Width = 48
	ti.Focus()
	m.input = ti

	return m, nil
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.destroy()
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "q" || line == "quit" {
				m.destroy()
				return m, tea.Quit
			}
			m.result, m.errMsg = "", ""
			if line != "" {
				m.execute(line)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inspectModel) destroy() {
	if m.stk != nil {
		m.stk.Destroy()
	}
	if m.arr != nil {
		m.arr.Destroy()
	}
}

func (m *inspectModel) execute(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch m.kind {
	case "stack":
		err = m.executeStack(cmd, args)
	case "darray":
		err = m.executeArray(cmd, args)
	}
	if err != nil {
		m.errMsg = err.Error()
	}
}

func (m *inspectModel) executeStack(cmd string, args []string) error {
	switch cmd {
	case "push":
		v, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.stk.Push(encode(v, m.elemSize)); err != nil {
			return err
		}
		m.result = fmt.Sprintf("pushed %d", v)

	case "pop":
		out := make([]byte, m.elemSize)
		if err := m.stk.Pop(out); err != nil {
			return err
		}
		m.result = fmt.Sprintf("popped %d", decode(out))

	case "peek":
		ref, err := m.stk.PeekRef()
		if err != nil {
			return err
		}
		m.result = fmt.Sprintf("top = %d (borrowed view: % x)", decode(ref), ref)

	case "discard":
		if err := m.stk.DiscardTop(); err != nil {
			return err
		}
		m.result = "discarded top"

	case "clear":
		if err := m.stk.Clear(); err != nil {
			return err
		}
		m.result = "cleared"

	case "reserve":
		n, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.stk.Reserve(n); err != nil {
			return err
		}
		m.result = fmt.Sprintf("reserved %d slots (content discarded)", n)

	case "resize":
		n, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.stk.Resize(n); err != nil {
			return err
		}
		m.result = fmt.Sprintf("resized to %d slots (content preserved)", n)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (m *inspectModel) executeArray(cmd string, args []string) error {
	switch cmd {
	case "push":
		v, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.arr.Push(encode(v, m.elemSize)); err != nil {
			return err
		}
		m.result = fmt.Sprintf("pushed %d", v)

	case "set":
		i, err := argUint(args, 0)
		if err != nil {
			return err
		}
		v, err := argUint(args, 1)
		if err != nil {
			return err
		}
		if err := m.arr.Set(i, encode(v, m.elemSize)); err != nil {
			return err
		}
		m.result = fmt.Sprintf("set [%d] = %d", i, v)

	case "ref":
		i, err := argUint(args, 0)
		if err != nil {
			return err
		}
		stride, err := m.arr.Stride()
		if err != nil {
			return err
		}
		out := make([]byte, stride)
		if err := m.arr.Ref(i, out); err != nil {
			return err
		}
		m.result = fmt.Sprintf("[%d] = %d (full slot: % x)", i, decode(out), out)

	case "reserve":
		n, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.arr.Reserve(n); err != nil {
			return err
		}
		m.result = fmt.Sprintf("reserved %d slots (content discarded)", n)

	case "resize":
		n, err := argUint(args, 0)
		if err != nil {
			return err
		}
		if err := m.arr.Resize(n); err != nil {
			return err
		}
		m.result = fmt.Sprintf("resized to %d slots (content preserved)", n)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Container Inspector"))
	b.WriteString(" ")
	b.WriteString(m.kind)
	b.WriteString("\n\n")

	switch m.kind {
	case "stack":
		st := m.stk.Stats()
		b.WriteString(fmt.Sprintf("elem=%d align=%d stride=%d cap=%d count=%d (%.0f%%)\n\n",
			st.ElementSize, st.Alignment, st.Stride, st.Capacity, st.Count, st.Utilization*100))
		b.WriteString(m.renderSlots(st.Count, st.Capacity))
		if ref, err := m.stk.PeekRef(); err == nil {
			b.WriteString("\ntop: ")
			b.WriteString(valueStyle.Render(fmt.Sprintf("%d", decode(ref))))
		}

	case "darray":
		st := m.arr.Stats()
		b.WriteString(fmt.Sprintf("elem=%d align=%d stride=%d cap=%d size=%d (%.0f%%)\n\n",
			st.ElementSize, st.Alignment, st.Stride, st.Capacity, st.Count, st.Utilization*100))
		b.WriteString(m.renderSlots(st.Count, st.Capacity))
		b.WriteString(m.renderArrayValues(st.Count, st.Stride))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.kind {
	case "stack":
		b.WriteString(helpStyle.Render("push <v> • pop • peek • discard • clear • reserve <n> • resize <n> • q quit"))
	case "darray":
		b.WriteString(helpStyle.Render("push <v> • set <i> <v> • ref <i> • reserve <n> • resize <n> • q quit"))
	}

	return b.String()
}

// renderSlots draws one cell per slot, filled cells first. Wide
// containers wrap every 32 slots.
func (m *inspectModel) renderSlots(count, capacity uint64) string {
	var b strings.Builder
	for i := uint64(0); i < capacity; i++ {
		if i > 0 && i%32 == 0 {
			b.WriteString("\n")
		}
		if i < count {
			b.WriteString(slotFilledStyle.Render("■"))
		} else {
			b.WriteString(slotEmptyStyle.Render("□"))
		}
	}
	return b.String()
}

func (m *inspectModel) renderArrayValues(count, stride uint64) string {
	if count == 0 {
		return ""
	}
	out := make([]byte, stride)
	var vals []string
	for i := uint64(0); i < count; i++ {
		if err := m.arr.Ref(i, out); err != nil {
			break
		}
		vals = append(vals, valueStyle.Render(strconv.FormatUint(decode(out), 10)))
	}
	return "\n[" + strings.Join(vals, " ") + "]"
}

func argUint(args []string, i int) (uint64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %q is not an unsigned integer", args[i])
	}
	return v, nil
}

// decode reads a little-endian value from up to the first 8 bytes.
func decode(buf []byte) uint64 {
	var v uint64
	n := len(buf)
	if n > 8 {
		n = 8
	}
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

func runInteractive(kind string, elemSize, alignment, capacity uint64) error {
	m, err := newInspectModel(kind, elemSize, alignment, capacity)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
