package problem

import "math"

// Sphere is sum(x_i^2).
func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Ellipsoid is sum(10^(6 i/(n-1)) x_i^2), condition number 1e6.
func Ellipsoid(x []float64) float64 {
	n := len(x)
	sum := 0.0
	for i, v := range x {
		exponent := 0.0
		if n > 1 {
			exponent = 6 * float64(i) / float64(n-1)
		}
		sum += math.Pow(10, exponent) * v * v
	}
	return sum
}

// Rastrigin is 10n + sum(x_i^2 - 10 cos(2 pi x_i)).
func Rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Rosenbrock is sum(100 (x_{i+1} - x_i^2)^2 + (1 - x_i)^2), minimal at ones.
func Rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

func shiftedSphere(x []float64, shift float64) float64 {
	sum := 0.0
	for _, v := range x {
		d := v - shift
		sum += d * d
	}
	return sum
}

func single(f func([]float64) float64) func([]float64) []float64 {
	return func(x []float64) []float64 {
		return []float64{f(x)}
	}
}

// doubleSphere has its two objectives minimal at zeros and ones.
func doubleSphere(x []float64) []float64 {
	return []float64{Sphere(x), shiftedSphere(x, 1)}
}

// halfSpace constrains sum(x) <= n/2 and keeps x_0 >= -5.
func halfSpace(x []float64) []float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return []float64{
		sum - float64(len(x))/2,
		-x[0] - 5,
	}
}
