package phonon

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const defaultSymprec = 1e-5

// readLines reads a file and returns a slice of strings of the
// non-blank lines
func readLines(filename string) (lines []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// readAllLines reads a file keeping blank lines, for formats whose
// header lines are positional and may legally be empty
func readAllLines(filename string) (lines []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	return lines, scanner.Err()
}

// parseFloats converts the first n fields of line to floats
func parseFloats(line string, n int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d fields in %q, got %d",
			n, line, len(fields))
	}
	ret := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", fields[i], err)
		}
		ret[i] = f
	}
	return ret, nil
}

func denseFrom3x3(a [3][3]float64) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, a[i][j])
		}
	}
	return d
}

func denseFromIntMat(s [3][3]int) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, float64(s[i][j]))
		}
	}
	return d
}

func mat3FromDense(d *mat.Dense) (a [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = d.At(i, j)
		}
	}
	return
}

func det3i(s [3][3]int) int {
	return s[0][0]*(s[1][1]*s[2][2]-s[1][2]*s[2][1]) -
		s[0][1]*(s[1][0]*s[2][2]-s[1][2]*s[2][0]) +
		s[0][2]*(s[1][0]*s[2][1]-s[1][1]*s[2][0])
}

func identityIntMat() [3][3]int {
	return [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// wrapFrac maps x into [0, 1)
func wrapFrac(x float64) float64 {
	x -= float64(int(x))
	if x < 0 {
		x += 1
	}
	if x >= 1 {
		x -= 1
	}
	return x
}

// nearInt reports whether x is within eps of an integer
func nearInt(x, eps float64) bool {
	return math.Abs(x-math.Round(x)) < eps
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
