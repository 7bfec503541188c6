// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

type Tuple2[V1, V2 any] struct {
	V1 V1
	V2 V2
}

type Tuple3[V1, V2, V3 any] struct {
	V1 V1
	V2 V2
	V3 V3
}

// ToAny converts an observable of T into an observable of 'any'.
func ToAny[T any](src Observable[T]) Observable[any] {
	return Map(src, func(x T) any { return x })
}

func toTuple2[V1, V2 any](xs []any) Tuple2[V1, V2] {
	v1, _ := xs[0].(V1)
	v2, _ := xs[1].(V2)
	return Tuple2[V1, V2]{V1: v1, V2: v2}
}

// Zip2 takes two observables and zips them into an observable of pairs.
func Zip2[V1, V2 any](src1 Observable[V1], src2 Observable[V2]) Observable[Tuple2[V1, V2]] {
	return Map(Zip(ToAny(src1), ToAny(src2)), toTuple2[V1, V2])
}

// CombineLatest2 is CombineLatest for two observables of different types.
func CombineLatest2[V1, V2 any](src1 Observable[V1], src2 Observable[V2]) Observable[Tuple2[V1, V2]] {
	return Map(CombineLatest(ToAny(src1), ToAny(src2)), toTuple2[V1, V2])
}

// ForkJoin2 is ForkJoin for two observables of different types.
func ForkJoin2[V1, V2 any](src1 Observable[V1], src2 Observable[V2]) Observable[Tuple2[V1, V2]] {
	return Map(ForkJoin(ToAny(src1), ToAny(src2)), toTuple2[V1, V2])
}

// Zip3 takes three observables and zips them into an observable of triples.
func Zip3[V1, V2, V3 any](src1 Observable[V1], src2 Observable[V2], src3 Observable[V3]) Observable[Tuple3[V1, V2, V3]] {
	return Map(
		Zip(ToAny(src1), ToAny(src2), ToAny(src3)),
		func(xs []any) Tuple3[V1, V2, V3] {
			v1, _ := xs[0].(V1)
			v2, _ := xs[1].(V2)
			v3, _ := xs[2].(V3)
			return Tuple3[V1, V2, V3]{V1: v1, V2: v2, V3: v3}
		})
}
