package serial

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openPTY returns the master side of a new pseudo terminal and the path of
// its slave, which stands in for the device node.
func openPTY(t *testing.T) (*os.File, string) {
	t.Helper()

	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		t.Skipf("no pseudo terminals: %v", err)
	}
	t.Cleanup(func() { _ = master.Close() })

	fd := int(master.Fd())
	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	require.NoError(t, err)

	return master, fmt.Sprintf("/dev/pts/%d", n)
}

// readUntil reads from p until want bytes arrived or d elapsed.
func readUntil(p *Port, want int, d time.Duration) string {
	var got []byte
	buf := make([]byte, 64)
	deadline := time.Now().Add(d)
	for len(got) < want && time.Now().Before(deadline) {
		n, err := p.Read(buf)
		if err != nil {
			break
		}
		got = append(got, buf[:n]...)
	}
	return string(got)
}

func TestOpen_pty(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(Config{Port: slave})
	require.NoError(t, err)
	defer p.Close()
	require.Equal(t, slave, p.String())

	t.Run("read times out", func(t *testing.T) {
		start := time.Now()
		n, err := p.Read(make([]byte, 16))
		require.NoError(t, err)
		require.Zero(t, n)
		require.Less(t, int64(time.Since(start)), int64(500*time.Millisecond))
	})

	t.Run("raw 8 bit line", func(t *testing.T) {
		// no line discipline: bytes arrive without a newline, 0xff intact
		_, err := master.Write([]byte{'0', '.', '5', 0xff})
		require.NoError(t, err)
		require.Equal(t, "0.5\xff", readUntil(p, 4, time.Second))
	})
}

func TestOpen_resetsInputBuffer(t *testing.T) {
	master, slave := openPTY(t)

	// bytes queued before the port is opened
	_, err := master.Write([]byte("0.9\n"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	p, err := Open(Config{Port: slave, BaudRate: DefaultBaudRate, ReadTimeout: 5 * time.Millisecond})
	require.NoError(t, err)
	defer p.Close()

	require.Empty(t, readUntil(p, 1, 50*time.Millisecond))

	_, err = master.Write([]byte("0.1\n"))
	require.NoError(t, err)
	require.Equal(t, "0.1\n", readUntil(p, 4, time.Second))
}
