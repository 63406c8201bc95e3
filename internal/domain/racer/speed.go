package racer

const (
	// BaseSpeed is the average speed of a racer before adjustment, in distance units per hour.
	BaseSpeed = 48.2

	// MinSpeed is the floor applied after every speed update.
	MinSpeed = 5.0

	// MinAdjustmentFactor and MaxAdjustmentFactor bound the drawn factor (inclusive).
	MinAdjustmentFactor = -10
	MaxAdjustmentFactor = 19

	adjustmentFactorRange = MaxAdjustmentFactor - MinAdjustmentFactor + 1

	// one slice is one simulated second
	distancePerHourToPerSecond = 1000.0 / 3600.0
)

// RandomSource is the randomness a racer consumes.
// *rand.Rand from math/rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// DrawAdjustmentFactor draws a factor uniformly from MinAdjustmentFactor..MaxAdjustmentFactor.
func DrawAdjustmentFactor(rnd RandomSource) int {
	return rnd.Intn(adjustmentFactorRange) + MinAdjustmentFactor
}

// MaxSpeed returns the top speed reachable with the given adjustment factor.
func MaxSpeed(factor int) float64 {
	return BaseSpeed * (1 + float64(factor)/100)
}

// DistancePerSlice converts a speed into the distance covered in one slice.
func DistancePerSlice(speed float64) float64 {
	return speed * distancePerHourToPerSecond
}

// NextSpeed computes the speed for the next slice.
//
// In the first quarter of the race the racer accelerates towards maxSpeed;
// afterwards the speed is scaled by a random factor in [0.5, 1.5). The result
// is clamped to [MinSpeed, maxSpeed], and past the halfway mark it never drops
// below maxSpeed/2.
func NextSpeed(currentSpeed, currentPosition, raceLength, maxSpeed float64, rnd RandomSource) float64 {
	speed := currentSpeed
	if currentPosition < raceLength/4 {
		speed += ((maxSpeed - speed) / 10) * rnd.Float64()
	} else {
		speed *= 0.5 + rnd.Float64()
	}

	if speed > maxSpeed {
		speed = maxSpeed
	}
	if speed < MinSpeed {
		speed = MinSpeed
	}

	if currentPosition > raceLength/2 && speed < maxSpeed/2 {
		speed = maxSpeed / 2
	}
	return speed
}
