// Command simplescene stands up a tiny refphys world - a ground plane and a
// wall - and drives a VirtualCharacter through it for a few seconds,
// printing its pose and ground state every 15th frame. It exists as a runnable
// sanity check of the wiring between charctrl and a host, not a game.
package main

import (
	"flag"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
	"github.com/wrenfield/charctrl/internal/refphys"
)

func setupScene() (*refphys.World, *charctrl.VirtualCharacter) {
	world := refphys.NewWorld()

	world.AddBody(&refphys.Body{
		Shape:     geom.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 0},
		Transform: geom.Identity(),
		Motion:    host.MotionStatic,
	})

	wallTransform := geom.Transform{Position: mgl64.Vec3{3, 1, 0}, Rotation: mgl64.QuatIdent()}
	world.AddBody(&refphys.Body{
		Shape:     geom.Box{HalfExtents: mgl64.Vec3{0.2, 2, 10}},
		Transform: wallTransform,
		Motion:    host.MotionStatic,
	})

	shape := geom.Capsule{Radius: 0.5, HalfHeight: 0.9}
	character := charctrl.New(
		mgl64.Vec3{0, 1, 0},
		mgl64.QuatIdent(),
		shape,
		world,
		world,
		world,
		charctrl.Config{CosMaxSlopeAngle: -1, Mass: 1, PenetrationRecoverySpeed: 1},
	)

	return world, character
}

func main() {
	dump := flag.Bool("dump", false, "spew-dump active contacts and the supporting contact every reported step")
	flag.Parse()

	world, character := setupScene()
	gravity := mgl64.Vec3{0, -9.81, 0}
	const dt = 1.0 / 60.0

	character.SetLinearVelocity(mgl64.Vec3{2, 0, 0})

	for step := 0; step < 180; step++ {
		character.Update(dt, gravity, host.Filters{})
		world.Step(dt)

		if step%15 == 0 {
			pos := character.Position()
			vel := character.LinearVelocity()
			fmt.Printf("step %3d  pos=(%.3f, %.3f, %.3f)  vel=(%.3f, %.3f, %.3f)  ground=%s\n",
				step, pos.X(), pos.Y(), pos.Z(), vel.X(), vel.Y(), vel.Z(), character.GetGroundState())

			if *dump {
				supporting, ok := character.SupportingContact()
				fmt.Println("active contacts:")
				fmt.Println(spew.Sdump(character.ActiveContacts()))
				if ok {
					fmt.Println("supporting contact:")
					fmt.Println(spew.Sdump(supporting))
				} else {
					fmt.Println("supporting contact: none")
				}
			}
		}
	}
}
