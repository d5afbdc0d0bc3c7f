package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Transport --dir ../domain/upstream --output domain/upstream --outpkg upstreammock --filename transport_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/buildrun --output domain/buildrun --outpkg buildrunmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ArtifactStore --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename artifact_store_mock.go
