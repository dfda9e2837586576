//go:build unix

package cellsize

import (
	"os"

	"golang.org/x/sys/unix"
)

// query asks the terminal for its pixel size via TIOCGWINSZ.
func query() Size {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return Size{}
	}
	return Size{
		Width:  int(ws.Xpixel) / int(ws.Col),
		Height: int(ws.Ypixel) / int(ws.Row),
	}
}
